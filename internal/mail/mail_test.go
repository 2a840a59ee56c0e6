package mail

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"authhub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg Message) error {
	return m.Called(msg).Error(0)
}

func TestRenderAllTemplates(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for name, subject := range subjects {
		t.Run(name, func(t *testing.T) {
			gotSubject, body, err := r.Render(Message{
				Template: name,
				To:       "a@x.com",
				Data: map[string]string{
					"firstName": "Jane",
					"code":      "123456",
					"link":      "http://localhost:3000/verify-email?email=a@x.com&code=123456",
					"data":      "incomplete documents",
				},
			})
			require.NoError(t, err)
			assert.Equal(t, subject, gotSubject)
			assert.Contains(t, body, "Jane")
		})
	}
}

func TestRenderRejectionCarriesReason(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, body, err := r.Render(Message{
		Template: TemplateAccountRejected,
		Data:     map[string]string{"firstName": "Jane", "data": "blurry national id"},
	})
	require.NoError(t, err)
	assert.Contains(t, body, "blurry national id")
}

func TestRenderCustomEmailUsesSubjectFromData(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	subject, body, err := r.Render(Message{
		Template: TemplateCustomEmail,
		Data:     map[string]string{"firstName": "Jane", "subject": "Maintenance window", "data": "We are down on Sunday."},
	})
	require.NoError(t, err)
	assert.Equal(t, "Maintenance window", subject)
	assert.Contains(t, body, "We are down on Sunday.")
	assert.Contains(t, body, "Jane")
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, _, err = r.Render(Message{Template: "nope"})
	assert.Error(t, err)
}

func TestSMTPMailerWithoutHostDropsMail(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	m := NewSMTPMailer(config.SMTPConfig{Port: "587", Sender: "noreply@example.com"}, r, zap.NewNop())
	err = m.Send(context.Background(), Message{Template: TemplateWelcomeEmail, To: "a@x.com"})
	assert.NoError(t, err)
}

func TestHandle(t *testing.T) {
	msg := Message{Template: TemplateWelcomeEmail, To: "a@x.com", Data: map[string]string{"firstName": "Jane"}}
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	t.Run("delivered", func(t *testing.T) {
		m := new(mockMailer)
		m.On("Send", msg).Return(nil)
		assert.True(t, Handle(context.Background(), m, body, zap.NewNop()))
		m.AssertExpectations(t)
	})

	t.Run("delivery failure", func(t *testing.T) {
		m := new(mockMailer)
		m.On("Send", msg).Return(errors.New("smtp down"))
		assert.False(t, Handle(context.Background(), m, body, zap.NewNop()))
	})

	t.Run("malformed body", func(t *testing.T) {
		m := new(mockMailer)
		assert.False(t, Handle(context.Background(), m, []byte("{"), zap.NewNop()))
		m.AssertNotCalled(t, "Send", mock.Anything)
	})
}
