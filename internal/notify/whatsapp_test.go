package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/voiceflow-enquiry/pkg/logging"
)

func TestNewTwilioWhatsAppSender_NilWithoutCredentials(t *testing.T) {
	assert.Nil(t, NewTwilioWhatsAppSender(TwilioConfig{AccountSID: "AC1"}, nil))
	assert.Nil(t, NewTwilioWhatsAppSender(TwilioConfig{AuthToken: "tok"}, nil))
}

func TestTwilioWhatsAppSender_PostsForm(t *testing.T) {
	var (
		path, contentType, user, pass string
		form                          map[string]string
		calls                         int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		path = r.URL.Path
		contentType = r.Header.Get("Content-Type")
		user, pass, _ = r.BasicAuth()
		assert.NoError(t, r.ParseForm())
		form = map[string]string{
			"From": r.PostForm.Get("From"),
			"To":   r.PostForm.Get("To"),
			"Body": r.PostForm.Get("Body"),
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer srv.Close()

	sender := NewTwilioWhatsAppSender(TwilioConfig{AccountSID: "AC123", AuthToken: "secret", BaseURL: srv.URL + "/"}, logging.Discard())
	err := sender.SendWhatsApp(context.Background(), WhatsAppMessage{
		From: "whatsapp:+14155238886",
		To:   "+919000000000",
		Body: "VoiceFlow Enquiry from Ann: Hi -- From: Ann (ann@x.com)",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", path)
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, "AC123", user)
	assert.Equal(t, "secret", pass)
	assert.Equal(t, "whatsapp:+14155238886", form["From"])
	assert.Equal(t, "whatsapp:+919000000000", form["To"])
	assert.Equal(t, "VoiceFlow Enquiry from Ann: Hi -- From: Ann (ann@x.com)", form["Body"])
}

func TestTwilioWhatsAppSender_ErrorStatusIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"code":20429,"message":"Too Many Requests","status":429}`))
	}))
	defer srv.Close()

	sender := NewTwilioWhatsAppSender(TwilioConfig{AccountSID: "AC123", AuthToken: "secret", BaseURL: srv.URL}, logging.Discard())
	err := sender.SendWhatsApp(context.Background(), WhatsAppMessage{From: "whatsapp:+1", To: "whatsapp:+2", Body: "hi"})

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
	assert.Equal(t, "code 20429: Too Many Requests", perr.Message)
	assert.Equal(t, 1, calls)
}

func TestTwilioWhatsAppSender_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	sender := NewTwilioWhatsAppSender(TwilioConfig{AccountSID: "AC123", AuthToken: "secret", BaseURL: base}, logging.Discard())
	err := sender.SendWhatsApp(context.Background(), WhatsAppMessage{From: "whatsapp:+1", To: "whatsapp:+2", Body: "hi"})
	require.Error(t, err)
	var perr *ProviderError
	assert.NotErrorAs(t, err, &perr)
	assert.True(t, strings.HasPrefix(err.Error(), "notify: twilio send failed"))
}

func TestTwilioWhatsAppSender_ValidatesMessage(t *testing.T) {
	sender := NewTwilioWhatsAppSender(TwilioConfig{AccountSID: "AC123", AuthToken: "secret"}, logging.Discard())
	ctx := context.Background()
	assert.Error(t, sender.SendWhatsApp(ctx, WhatsAppMessage{To: "whatsapp:+2", Body: "hi"}))
	assert.Error(t, sender.SendWhatsApp(ctx, WhatsAppMessage{From: "whatsapp:+1", Body: "hi"}))
	assert.Error(t, sender.SendWhatsApp(ctx, WhatsAppMessage{From: "whatsapp:+1", To: "whatsapp:+2", Body: "  "}))
}

func TestWhatsAppAddress(t *testing.T) {
	assert.Equal(t, "whatsapp:+1555", WhatsAppAddress("+1555"))
	assert.Equal(t, "whatsapp:+1555", WhatsAppAddress("whatsapp:+1555"))
	assert.Equal(t, "WhatsApp:+1555", WhatsAppAddress("WhatsApp:+1555"))
	assert.Equal(t, "", WhatsAppAddress("  "))
}

func TestFormatTwilioError(t *testing.T) {
	assert.Equal(t, "", formatTwilioError(nil))
	assert.Equal(t, "Authenticate", formatTwilioError([]byte(`{"message":"Authenticate"}`)))
	assert.Equal(t, "upstream down", formatTwilioError([]byte("upstream down")))
}
