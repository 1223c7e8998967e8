package enquiry

import (
	"encoding/json"
	"time"
)

// PhonePlaceholder stands in for a phone number the enquirer did not give.
const PhonePlaceholder = "N/A"

// Enquiry is a validated web form submission. It only exists for the
// lifetime of one request.
type Enquiry struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// requiredFields are checked in this order so ValidationError lists are stable.
var requiredFields = []string{"name", "email", "message"}

// Validate turns a raw decoded payload into an Enquiry. A nil payload is
// treated as an empty object and unknown keys are ignored.
func Validate(payload map[string]any) (Enquiry, error) {
	if payload == nil {
		payload = map[string]any{}
	}

	values := make(map[string]string, len(requiredFields))
	var missing []string
	for _, field := range requiredFields {
		v, ok := payload[field].(string)
		if !ok || v == "" {
			missing = append(missing, field)
			continue
		}
		values[field] = v
	}
	if len(missing) > 0 {
		return Enquiry{}, &ValidationError{Fields: missing}
	}

	phone, _ := payload["phone"].(string)
	if phone == "" {
		phone = PhonePlaceholder
	}

	return Enquiry{
		Name:    values["name"],
		Email:   values["email"],
		Phone:   phone,
		Message: values["message"],
	}, nil
}

// DecodePayload parses a request body into a key/value payload. Empty bodies,
// malformed JSON and non-object JSON all decode to an empty payload so they
// fail validation instead of faulting.
func DecodePayload(body []byte) map[string]any {
	payload := map[string]any{}
	if len(body) == 0 {
		return payload
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return payload
	}
	if obj, ok := decoded.(map[string]any); ok {
		return obj
	}
	return payload
}

// Channel names a notification delivery mechanism.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// ChannelStatus is how a single channel attempt settled.
type ChannelStatus string

const (
	// StatusSent means the provider accepted the request.
	StatusSent ChannelStatus = "sent"
	// StatusSkipped means the channel is not fully configured.
	StatusSkipped ChannelStatus = "skipped"
	// StatusRejected means the provider answered with a non-2xx status.
	StatusRejected ChannelStatus = "rejected"
	// StatusFailed means the attempt faulted: transport error or panic.
	StatusFailed ChannelStatus = "failed"
)

// ChannelResult records one channel attempt.
type ChannelResult struct {
	Channel  Channel
	Status   ChannelStatus
	Err      error
	Duration time.Duration
}

// Outcome is the overall result of dispatching one enquiry. Per-channel
// results are kept for logging; callers only see OK.
type Outcome struct {
	OK      bool
	Err     error
	Results []ChannelResult
}

// Result returns the recorded result for ch, if any.
func (o Outcome) Result(ch Channel) (ChannelResult, bool) {
	for _, r := range o.Results {
		if r.Channel == ch {
			return r, true
		}
	}
	return ChannelResult{}, false
}
