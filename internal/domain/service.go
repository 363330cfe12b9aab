package domain

import "time"

// Service lifecycle states.
const (
	ServiceStatusSelected = "selected"
	ServiceStatusActive   = "active"
)

// Service is a product a customer selected; an admin activates it.
type Service struct {
	ServiceID   string     `json:"id" dynamodbav:"service_id"`
	CustomerID  string     `json:"customer_id" dynamodbav:"customer_id"`
	ServiceName string     `json:"service_name" dynamodbav:"service_name"`
	Status      string     `json:"status" dynamodbav:"status"`
	ActivatedAt *time.Time `json:"activated_at,omitempty" dynamodbav:"activated_at,omitempty"`
	CreatedAt   time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type SelectServiceRequest struct {
	ServiceName string `json:"serviceName" validate:"required,max=120"`
	CustomerID  string `json:"customerId" validate:"required"`
}

type ActivateServiceRequest struct {
	ServiceID string `json:"serviceId" validate:"required"`
}
