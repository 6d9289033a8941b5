package service

import (
	"encoding/base64"
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/repository"
)

const cursorVersion = 1

// EncodeCursor turns a resume position into an opaque token bound to the
// surface and filter set it was produced for.
func EncodeCursor(surface Surface, filter domain.ListingFilter, pos repository.Position) (string, error) {
	st, err := structpb.NewStruct(map[string]any{
		"v":  cursorVersion,
		"s":  string(surface),
		"f":  filter.Fingerprint(),
		"t":  pos.SortValue.UTC().Format(time.RFC3339Nano),
		"id": pos.ID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build cursor: %w", err)
	}
	b, err := proto.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("failed to encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeCursor parses token and checks it belongs to surface and filter.
// A token from another filter set is rejected with ErrInvalidCursor.
func DecodeCursor(token string, surface Surface, filter domain.ListingFilter) (*repository.Position, error) {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: not base64", domain.ErrInvalidCursor)
	}
	var st structpb.Struct
	if err := proto.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("%w: malformed", domain.ErrInvalidCursor)
	}
	fields := st.GetFields()

	if int(fields["v"].GetNumberValue()) != cursorVersion {
		return nil, fmt.Errorf("%w: unsupported version", domain.ErrInvalidCursor)
	}
	if fields["s"].GetStringValue() != string(surface) {
		return nil, fmt.Errorf("%w: issued for another listing", domain.ErrInvalidCursor)
	}
	if fields["f"].GetStringValue() != filter.Fingerprint() {
		return nil, fmt.Errorf("%w: filters changed", domain.ErrInvalidCursor)
	}

	ts, err := time.Parse(time.RFC3339Nano, fields["t"].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("%w: bad position", domain.ErrInvalidCursor)
	}
	id := fields["id"].GetStringValue()
	if id == "" {
		return nil, fmt.Errorf("%w: bad position", domain.ErrInvalidCursor)
	}
	return &repository.Position{SortValue: ts, ID: id}, nil
}
