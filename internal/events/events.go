// Package events implements the Event Grid side of image ingestion:
// publishing BlobCreated notifications and handling webhook deliveries,
// including the subscription validation handshake.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Event type and subject names.
const (
	ValidationEventType  = "Microsoft.EventGrid.SubscriptionValidationEvent"
	BlobCreatedEventType = "Glimpse.EventGrid.Types.BlobCreated"
	BlobCreatedSubject   = "Glimpse.EventGrid.Messages.BlobCreated"
)

var (
	// ErrNoEvents indicates a delivery with an empty event array.
	ErrNoEvents = errors.New("no events in delivery")
	// ErrMalformedEvent indicates an event missing required fields.
	ErrMalformedEvent = errors.New("malformed event")
	// ErrUnknownEvent indicates an event type this service does not handle.
	ErrUnknownEvent = errors.New("unknown event type")
	// ErrBlobTooLarge indicates a referenced blob exceeded the upload limit.
	ErrBlobTooLarge = errors.New("blob exceeds maximum upload size")
)

// MapHTTPStatus maps event errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNoEvents) || errors.Is(err, ErrMalformedEvent) || errors.Is(err, ErrUnknownEvent) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrBlobTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// Kind classifies an incoming event.
type Kind int

const (
	Custom Kind = iota
	Validation
	BlobCreated
)

// Event is an Event Grid schema event.
type Event struct {
	ID          string          `json:"id"`
	EventType   string          `json:"eventType"`
	Subject     string          `json:"subject"`
	EventTime   time.Time       `json:"eventTime"`
	Data        json.RawMessage `json:"data,omitempty"`
	DataVersion string          `json:"dataVersion,omitempty"`
	Topic       string          `json:"topic,omitempty"`
}

// BlobData identifies a blob in the BlobCreated event payload.
type BlobData struct {
	Container string `json:"container"`
	Blob      string `json:"blob"`
}

type validationData struct {
	ValidationCode string `json:"validationCode"`
}

// NewBlobCreated builds the notification published after an image upload.
func NewBlobCreated(container, blob string) (Event, error) {
	data, err := json.Marshal(BlobData{Container: container, Blob: blob})
	if err != nil {
		return Event{}, err
	}

	return Event{
		ID:          uuid.NewString(),
		EventType:   BlobCreatedEventType,
		Subject:     BlobCreatedSubject,
		EventTime:   time.Now().UTC(),
		Data:        data,
		DataVersion: "1.0",
	}, nil
}

// Parse decodes an Event Grid delivery and returns its first event.
// Event Grid delivers webhook events as an array with a single element.
func Parse(r io.Reader) (Event, error) {
	var delivery []Event
	if err := json.NewDecoder(r).Decode(&delivery); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if len(delivery) == 0 {
		return Event{}, ErrNoEvents
	}
	if delivery[0].EventType == "" {
		return Event{}, fmt.Errorf("%w: missing eventType", ErrMalformedEvent)
	}
	return delivery[0], nil
}

// Kind reports how the event should be handled.
func (e Event) Kind() Kind {
	switch e.EventType {
	case ValidationEventType:
		return Validation
	case BlobCreatedEventType:
		return BlobCreated
	default:
		return Custom
	}
}

// ValidationCode returns the handshake code of a subscription validation event.
func (e Event) ValidationCode() (string, error) {
	var v validationData
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if v.ValidationCode == "" {
		return "", fmt.Errorf("%w: missing validationCode", ErrMalformedEvent)
	}
	return v.ValidationCode, nil
}

// Blob returns the payload of a BlobCreated event.
func (e Event) Blob() (BlobData, error) {
	var b BlobData
	if err := json.Unmarshal(e.Data, &b); err != nil {
		return BlobData{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if b.Container == "" || b.Blob == "" {
		return BlobData{}, fmt.Errorf("%w: missing container or blob", ErrMalformedEvent)
	}
	return b, nil
}
