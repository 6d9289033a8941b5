// Package firestore stores rooms and inquiries in Cloud Firestore, in the
// "rooms" and "inquiries" collections.
package firestore

import (
	"fmt"
	"regexp"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/repository"
)

const (
	roomsCollection     = "rooms"
	inquiriesCollection = "inquiries"

	// maxBatchWrites is the Firestore limit on writes per commit.
	maxBatchWrites = 500
)

type Store struct {
	client *firestore.Client
	repository.RoomRepository
	repository.InquiryRepository
}

func NewStore(client *firestore.Client) *Store {
	return &Store{
		client:            client,
		RoomRepository:    NewRoomRepository(client),
		InquiryRepository: NewInquiryRepository(client),
	}
}

var consoleLink = regexp.MustCompile(`https://console\.firebase\.google\.com/\S+`)

// mapError folds gRPC status codes returned by Firestore into the domain
// error categories. A rejected filter/sort combination becomes a
// MissingIndexError carrying the console link to create the index.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	msg := st.Message()
	switch st.Code() {
	case codes.NotFound:
		return domain.ErrNotFound
	case codes.FailedPrecondition:
		return &domain.MissingIndexError{Hint: indexHint(msg), Err: err}
	case codes.InvalidArgument:
		if strings.Contains(strings.ToLower(msg), "index") {
			return &domain.MissingIndexError{Hint: indexHint(msg), Err: err}
		}
		return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return err
}

func indexHint(msg string) string {
	if link := consoleLink.FindString(msg); link != "" {
		return link
	}
	return msg
}
