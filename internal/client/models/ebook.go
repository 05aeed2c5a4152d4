// Package models holds the client-side view of the e-book API payloads.
package models

import "time"

type Ebook struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId"`
	ObjectPath string    `json:"objectPath"`
	FileName   string    `json:"fileName"`
	SizeBytes  int64     `json:"sizeBytes"`
	MimeType   string    `json:"mimeType"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type SignUploadRequest struct {
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	Mime     string `json:"mime"`
}

// UploadTicket is the answer to a sign request. ExpiresIn is in seconds.
type UploadTicket struct {
	UploadURL  string `json:"uploadUrl"`
	ObjectPath string `json:"objectPath"`
	Token      string `json:"token"`
	FileID     string `json:"fileId"`
	ExpiresIn  int64  `json:"expiresIn"`
}

type CompletedUpload struct {
	Success    bool   `json:"success"`
	ObjectPath string `json:"objectPath"`
	Status     string `json:"status"`
}

type ViewURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	ExpiresIn int64     `json:"expiresIn"`
}

type EbookList struct {
	PDFs  []*Ebook `json:"pdfs"`
	Count int      `json:"count"`
}
