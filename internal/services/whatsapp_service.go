package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

const graphAPIBase = "https://graph.facebook.com/v20.0"

// WhatsAppService sends pre-approved template messages through the Meta
// Graph API. Free-form text is not possible outside a session window, so
// every outbound message goes through a template.
type WhatsAppService struct {
	token         string
	phoneNumberID string
	language      string
	dryRun        bool
	client        *http.Client
}

func NewWhatsAppService(token, phoneNumberID, language string, dryRun bool) *WhatsAppService {
	return &WhatsAppService{
		token:         token,
		phoneNumberID: phoneNumberID,
		language:      language,
		dryRun:        dryRun,
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

type waTextParameter struct {
	Type string `json:"type"` // always "text"
	Text string `json:"text"`
}

type waComponent struct {
	Type       string            `json:"type"` // always "body"
	Parameters []waTextParameter `json:"parameters"`
}

type waTemplateMessage struct {
	MessagingProduct string `json:"messaging_product"` // always "whatsapp"
	To               string `json:"to"`
	Type             string `json:"type"` // always "template"
	Template         struct {
		Name     string `json:"name"`
		Language struct {
			Code string `json:"code"`
		} `json:"language"`
		Components []waComponent `json:"components"`
	} `json:"template"`
}

// SendTemplate posts one template message. Missing credentials fail as
// ConfigurationError before any request is made; remote rejections come back
// as DeliveryError.
func (w *WhatsAppService) SendTemplate(ctx context.Context, to, templateName string, bodyParameters []string) error {
	if templateName == "" {
		return &ConfigurationError{Missing: "whatsapp template name"}
	}
	if w.dryRun {
		log.Printf("[wa][dry-run] to=%s template=%s params=%q", to, templateName, bodyParameters)
		return nil
	}
	if w.token == "" || w.phoneNumberID == "" {
		return &ConfigurationError{Missing: "whatsapp token/phone_number_id"}
	}

	msg := waTemplateMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
	}
	msg.Template.Name = templateName
	msg.Template.Language.Code = w.language
	params := make([]waTextParameter, 0, len(bodyParameters))
	for _, p := range bodyParameters {
		params = append(params, waTextParameter{Type: "text", Text: p})
	}
	msg.Template.Components = []waComponent{{Type: "body", Parameters: params}}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("whatsapp marshal: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/messages", graphAPIBase, url.PathEscape(w.phoneNumberID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.token)

	log.Printf("[wa][send] to=%s template=%s", to, templateName)
	resp, err := w.client.Do(req)
	if err != nil {
		return &DeliveryError{Channel: "whatsapp", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1000))
	log.Printf("[wa][send][err] status=%d body=%s", resp.StatusCode, string(respBody))
	return &DeliveryError{Channel: "whatsapp", Status: resp.StatusCode, Detail: string(respBody)}
}
