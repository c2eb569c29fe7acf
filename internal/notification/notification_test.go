package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBooking() *models.Booking {
	date := "2024-06-01"
	ref := "PSK_123"
	return &models.Booking{
		ID:               "b1",
		Name:             "Ada <script>",
		Email:            "ada@example.com",
		Phone:            "0800",
		Pickup:           "ABUAD",
		Destination:      "Lagos",
		IntendedDate:     "2024-06-01",
		VehicleType:      "4-seater",
		TotalFare:        12500,
		Status:           models.StatusConfirmed,
		ConfirmedDate:    &date,
		PaymentReference: &ref,
	}
}

func TestRender_AllKinds(t *testing.T) {
	b := sampleBooking()
	msgs := []Message{
		ForBooking(KindStatusConfirmed, b),
		ForBooking(KindStatusCancelled, b),
		ForBooking(KindBookingReceived, b),
		ForBooking(KindRescheduled, b),
		RefundRequest("ops@example.com", b),
		CapacityOverflow("ops@example.com", "b1", "all vehicles full"),
	}
	for _, m := range msgs {
		t.Run(string(m.Kind), func(t *testing.T) {
			subject, body, err := Render(m)
			require.NoError(t, err)
			assert.NotEmpty(t, subject)
			assert.Contains(t, body, "TecoTransit")
		})
	}
}

func TestRender_EscapesAndFillsData(t *testing.T) {
	subject, body, err := Render(ForBooking(KindStatusConfirmed, sampleBooking()))
	require.NoError(t, err)
	assert.Equal(t, "Your TecoTransit trip is confirmed", subject)
	assert.Contains(t, body, "2024-06-01")
	assert.Contains(t, body, "Ada &lt;script&gt;")
	assert.NotContains(t, body, "<script>")
}

func TestRender_MissingKeysRenderEmpty(t *testing.T) {
	b := sampleBooking()
	b.PaymentReference = nil
	_, body, err := Render(ForBooking(KindStatusCancelled, b))
	require.NoError(t, err)
	assert.NotContains(t, body, "refund")
	assert.NotContains(t, body, "no value")
}

func TestRender_UnknownKind(t *testing.T) {
	_, _, err := Render(Message{Kind: "nope", To: "x@example.com"})
	assert.Error(t, err)
}

func TestMailSender_Send(t *testing.T) {
	mailer := &LogMailer{}
	sender := NewMailSender(mailer)

	require.NoError(t, sender.Send(context.Background(), CapacityOverflow("ops@example.com", "b9", "full")))
	require.Equal(t, 1, mailer.Count())
	assert.Equal(t, "ops@example.com", mailer.Sent[0].To)
	assert.Equal(t, "Booking b9 could not be assigned to a trip", mailer.Sent[0].Subject)

	err := sender.Send(context.Background(), Message{Kind: KindRescheduled})
	assert.Error(t, err, "message without recipient must be rejected")
	assert.Equal(t, 1, mailer.Count())
}

type fakePublisher struct {
	keys []string
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, key string, _ any) error {
	p.keys = append(p.keys, key)
	return p.err
}

func TestQueueSender_Send(t *testing.T) {
	pub := &fakePublisher{}
	sender := NewQueueSender(pub)

	require.NoError(t, sender.Send(context.Background(), ForBooking(KindRescheduled, sampleBooking())))
	assert.Equal(t, []string{"notification.rescheduled"}, pub.keys)

	pub.err = errors.New("channel closed")
	assert.Error(t, sender.Send(context.Background(), ForBooking(KindRescheduled, sampleBooking())))
}

type fakeSES struct {
	input *ses.SendEmailInput
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = in
	return &ses.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	api := &fakeSES{}
	m := &SESMailer{client: api, from: "bookings@example.com"}

	require.NoError(t, m.Send(context.Background(), Email{To: "ada@example.com", Subject: "hi", HTML: "<p>x</p>"}))
	require.NotNil(t, api.input)
	assert.Equal(t, "bookings@example.com", aws.ToString(api.input.Source))
	assert.Equal(t, []string{"ada@example.com"}, api.input.Destination.ToAddresses)
	assert.Equal(t, "<p>x</p>", aws.ToString(api.input.Message.Body.Html.Data))
}
