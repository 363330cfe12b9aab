package domain

import "time"

type Document struct {
	DocumentID  string    `json:"id" dynamodbav:"document_id"`
	CustomerID  string    `json:"customer_id" dynamodbav:"customer_id"`
	FileName    string    `json:"file_name" dynamodbav:"file_name"`
	ObjectKey   string    `json:"-" dynamodbav:"object_key"`
	ContentType string    `json:"content_type" dynamodbav:"content_type"`
	Size        int64     `json:"size" dynamodbav:"size"`
	SHA256      string    `json:"sha256" dynamodbav:"sha256"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
}
