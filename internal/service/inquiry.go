package service

import (
	"context"
	"errors"
	"time"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/logger"
	"locationapp-backend/internal/messaging"
	"locationapp-backend/internal/repository"
	"locationapp-backend/internal/utils"
)

// DefaultInquiryMessage is used when the requester leaves the message empty.
const DefaultInquiryMessage = "Bonjour, je suis intéressé(e)."

const defaultInquiryListLimit = 50

// InquiryReceipt is an inquiry with the room it references. Room is nil and
// RoomUnavailable set when the reference no longer resolves.
type InquiryReceipt struct {
	Inquiry         *domain.Inquiry
	Room            *domain.Room
	RoomUnavailable bool
	Estimate        *utils.PriceEstimate
	// OperatorLink opens a chat with the operator, pre-filled with the inquiry.
	OperatorLink string
	// RequesterLink opens a chat with the requester.
	RequesterLink string
}

type InquiryServiceConfig struct {
	OperatorPhone string
	OperatorEmail string
	Location      *time.Location
}

type inquiryService struct {
	inquiryRepo repository.InquiryRepository
	roomRepo    repository.RoomRepository
	email       EmailService
	cfg         InquiryServiceConfig
	now         func() time.Time
}

func NewInquiryService(inquiryRepo repository.InquiryRepository, roomRepo repository.RoomRepository, email EmailService, cfg InquiryServiceConfig) InquiryService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &inquiryService{
		inquiryRepo: inquiryRepo,
		roomRepo:    roomRepo,
		email:       email,
		cfg:         cfg,
		now:         time.Now,
	}
}

// SubmitInquiry validates and stores a lead. Nothing is written when
// validation fails. A room that cannot be loaded does not block submission.
func (s *inquiryService) SubmitInquiry(ctx context.Context, inquiry *domain.Inquiry) (*InquiryReceipt, error) {
	logger.EnterMethod("inquiryService.SubmitInquiry", "roomID", inquiry.RoomID)

	draft := *inquiry
	draft.Normalize()
	if draft.Message == "" {
		draft.Message = DefaultInquiryMessage
	}
	if err := draft.Validate(s.now(), s.cfg.Location); err != nil {
		return nil, err
	}

	room := s.lookupRoom(ctx, draft.RoomID)

	if err := s.inquiryRepo.Create(ctx, &draft); err != nil {
		logger.ExitMethodWithError("inquiryService.SubmitInquiry", err, "roomID", draft.RoomID)
		return nil, err
	}

	receipt := s.receipt(&draft, room)
	s.notifyOperator(ctx, &draft, room, receipt.RequesterLink)

	logger.ExitMethod("inquiryService.SubmitInquiry", "inquiryID", draft.ID, "roomUnavailable", receipt.RoomUnavailable)
	return receipt, nil
}

func (s *inquiryService) GetReceipt(ctx context.Context, id string) (*InquiryReceipt, error) {
	inquiry, err := s.inquiryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.receipt(inquiry, s.lookupRoom(ctx, inquiry.RoomID)), nil
}

func (s *inquiryService) ListForRoom(ctx context.Context, roomID string, limit int) ([]domain.Inquiry, error) {
	if limit <= 0 {
		limit = defaultInquiryListLimit
	}
	return s.inquiryRepo.ListByRoom(ctx, roomID, limit)
}

// EstimatePrice quotes a stay in roomID using the same date rules as an
// inquiry.
func (s *inquiryService) EstimatePrice(ctx context.Context, roomID string, start, end time.Time) (*utils.PriceEstimate, error) {
	window := domain.Inquiry{RoomID: roomID, Name: "-", Phone: "-", DateStart: &start, DateEnd: &end}
	if err := window.Validate(s.now(), s.cfg.Location); err != nil {
		return nil, err
	}
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	est, err := utils.EstimateRent(room.PricePerMonth, room.Currency, start.In(s.cfg.Location), end.In(s.cfg.Location))
	if err != nil {
		return nil, domain.NewValidationError("dateEnd", err.Error())
	}
	return &est, nil
}

// lookupRoom resolves the weak room reference; any failure reads as
// "room unavailable".
func (s *inquiryService) lookupRoom(ctx context.Context, roomID string) *domain.Room {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Could not load room for inquiry", "roomID", roomID, "error", err)
		}
		return nil
	}
	return room
}

func (s *inquiryService) receipt(inquiry *domain.Inquiry, room *domain.Room) *InquiryReceipt {
	r := &InquiryReceipt{Inquiry: inquiry, Room: room, RoomUnavailable: room == nil}

	if room != nil && inquiry.DateStart != nil && inquiry.DateEnd != nil {
		est, err := utils.EstimateRent(room.PricePerMonth, room.Currency, inquiry.DateStart.In(s.cfg.Location), inquiry.DateEnd.In(s.cfg.Location))
		if err == nil {
			r.Estimate = &est
		}
	}

	if s.cfg.OperatorPhone != "" {
		text := messaging.InquiryText(inquiry, room, r.Estimate, s.cfg.Location)
		if link, err := messaging.DeepLink(s.cfg.OperatorPhone, text); err == nil {
			r.OperatorLink = link
		}
	}
	if link, err := messaging.DeepLink(inquiry.Phone, ""); err == nil {
		r.RequesterLink = link
	}
	return r
}

func (s *inquiryService) notifyOperator(ctx context.Context, inquiry *domain.Inquiry, room *domain.Room, replyLink string) {
	if s.email == nil || s.cfg.OperatorEmail == "" {
		return
	}
	logger.ExternalServiceCall("email", "SendInquiryNotice", "inquiryID", inquiry.ID)
	err := s.email.SendInquiryNotice(context.WithoutCancel(ctx), s.cfg.OperatorEmail, inquiry, room, replyLink)
	logger.ExternalServiceResult("email", "SendInquiryNotice", err, "inquiryID", inquiry.ID)
}
