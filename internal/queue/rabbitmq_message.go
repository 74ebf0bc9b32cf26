package queue

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Message is a decoded job still held by the broker until acknowledged
type Message struct {
	Job      *Job
	delivery amqp.Delivery
}

var _ MessageInterface = (*Message)(nil)

func newMessage(job *Job, d amqp.Delivery) *Message {
	return &Message{Job: job, delivery: d}
}

// Ack removes the job from the queue
func (m *Message) Ack() error {
	return m.delivery.Ack(false)
}

// Nack returns the job to the queue, or dead-letters it when requeue is false
func (m *Message) Nack(requeue bool) error {
	return m.delivery.Nack(false, requeue)
}

// GetJob returns the decoded job
func (m *Message) GetJob() *Job {
	return m.Job
}

// Redelivered reports whether the broker has handed this job out before
func (m *Message) Redelivered() bool {
	return m.delivery.Redelivered
}
