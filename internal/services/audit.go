package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"
)

const (
	AuditCodeRedeemed = "code_redeemed"
	AuditTamper       = "tamper_detected"
	AuditLockout      = "lockout"
)

// AuditSink receives audit events. Emit never blocks gameplay and never
// reports failure to the caller.
type AuditSink interface {
	Emit(ctx context.Context, kind string, fields map[string]string)
}

type NopAuditSink struct{}

func (NopAuditSink) Emit(context.Context, string, map[string]string) {}

type LogAuditSink struct{}

func (LogAuditSink) Emit(ctx context.Context, kind string, fields map[string]string) {
	keys := sortedKeys(fields)
	var buf bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&buf, " %s=%q", k, fields[k])
	}
	log.Printf("audit %s%s", kind, buf.String())
}

// MultiAuditSink fans an event out to every sink.
type MultiAuditSink []AuditSink

func (m MultiAuditSink) Emit(ctx context.Context, kind string, fields map[string]string) {
	for _, s := range m {
		if s != nil {
			s.Emit(ctx, kind, fields)
		}
	}
}

type webhookEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type webhookEmbed struct {
	Title     string              `json:"title"`
	Color     int                 `json:"color"`
	Fields    []webhookEmbedField `json:"fields"`
	Footer    map[string]string   `json:"footer"`
	Timestamp string              `json:"timestamp"`
}

type webhookPayload struct {
	Embeds []webhookEmbed `json:"embeds"`
}

var webhookTitles = map[string]string{
	AuditCodeRedeemed: "One-Time Code Redeemed",
	AuditTamper:       "Integrity Check Failed",
	AuditLockout:      "Player Locked Out",
}

var webhookColors = map[string]int{
	AuditCodeRedeemed: 0x00FFFF,
	AuditTamper:       0xFF0000,
	AuditLockout:      0xFFA500,
}

// WebhookAuditSink posts Discord-style embeds. Each post runs on its own
// goroutine with a timeout.
type WebhookAuditSink struct {
	url  string
	http *http.Client
	wg   sync.WaitGroup
}

func NewWebhookAuditSink(url string) *WebhookAuditSink {
	return &WebhookAuditSink{
		url:  url,
		http: &http.Client{Timeout: 5 * time.Second},
	}
}

func (w *WebhookAuditSink) Emit(ctx context.Context, kind string, fields map[string]string) {
	if w == nil || w.url == "" {
		return
	}
	body, err := json.Marshal(buildWebhookPayload(kind, fields, time.Now().UTC()))
	if err != nil {
		log.Printf("Failed to encode audit webhook: %v", err)
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			log.Printf("Audit webhook failed: %v", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := w.http.Do(req)
		if err != nil {
			log.Printf("Audit webhook failed: %v", err)
			return
		}
		resp.Body.Close()
		if resp.StatusCode >= 300 {
			log.Printf("Audit webhook returned status %d", resp.StatusCode)
		}
	}()
}

// Wait blocks until in-flight posts finish.
func (w *WebhookAuditSink) Wait() {
	w.wg.Wait()
}

func buildWebhookPayload(kind string, fields map[string]string, now time.Time) webhookPayload {
	title, ok := webhookTitles[kind]
	if !ok {
		title = kind
	}
	embed := webhookEmbed{
		Title:     title,
		Color:     webhookColors[kind],
		Footer:    map[string]string{"text": "Diamond Mines Access Log"},
		Timestamp: now.Format(time.RFC3339),
	}
	for _, k := range sortedKeys(fields) {
		v := fields[k]
		if v == "" {
			v = unknownValue
		}
		embed.Fields = append(embed.Fields, webhookEmbedField{
			Name:   k,
			Value:  v,
			Inline: k == "code" || k == "timestamp",
		})
	}
	return webhookPayload{Embeds: []webhookEmbed{embed}}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func logAuditFailure(kind string, err error) {
	log.Printf("Audit sink failed for %s: %v", kind, err)
}
