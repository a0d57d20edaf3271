// Package models holds the request and response bodies of the portal's JSON
// API.
package models

import (
	"autolynx-portal/internal/campaigns"
	"autolynx-portal/internal/chat"
	"autolynx-portal/internal/contacts"
	"autolynx-portal/internal/settings"
)

type ParseRequest struct {
	Text string `json:"text"`
}

type ParseResponse struct {
	Contacts []contacts.Contact `json:"contacts"`
	Report   contacts.Report    `json:"report"`
}

// SubmitResponse is returned by contact submission. Pending means the webhook
// did not answer in time and is assumed to still be working.
type SubmitResponse struct {
	Message  string             `json:"message"`
	Contacts []contacts.Contact `json:"contacts"`
	Pending  bool               `json:"pending,omitempty"`
}

type UploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Pending  bool   `json:"pending,omitempty"`
}

type ChatSendRequest struct {
	Message string `json:"message" binding:"required"`
}

type ChatHistoryResponse struct {
	SessionID string         `json:"session_id"`
	Messages  []chat.Message `json:"messages"`
}

type ChatResetResponse struct {
	SessionID string `json:"session_id"`
}

type ChatModeBody struct {
	Mode settings.ChatMode `json:"mode"`
}

type CampaignContactsResponse struct {
	CampaignID string                  `json:"campaign_id"`
	Stats      campaigns.DetailStats   `json:"stats"`
	Contacts   []campaigns.CallContact `json:"contacts"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	Database       string `json:"database"`
	CampaignSource string `json:"campaign_source"`
	LiveClients    int    `json:"live_clients"`
}
