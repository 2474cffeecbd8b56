package entity

import "errors"

// SendMailcastMessage is the request body accepted by the messaging gateway
type SendMailcastMessage struct {
	CompanyID   string  `json:"companyId"`
	AgentID     string  `json:"agentId"`
	PhoneNumber string  `json:"phoneNumber"`
	Message     Message `json:"message"`
	Type        string  `json:"type"`
}

// Message carries the text of a gateway message
type Message struct {
	Text string `json:"text,omitempty"`
}

// Validate rejects empty messages before they reach the gateway
func (m Message) Validate() error {
	if m.Text == "" {
		return errors.New("message text is required")
	}
	return nil
}

// SendMailcastMessageResponse is the gateway's reply
type SendMailcastMessageResponse struct {
	Success bool `json:"success"`
	Data    struct {
		TaskID string `json:"taskId"`
		Status string `json:"status"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}
