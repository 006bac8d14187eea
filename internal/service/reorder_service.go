package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/infra"

	"github.com/rs/zerolog/log"
)

// ReorderDispatcher delivers a formatted reorder message (worker.Dispatcher).
// queued is true when delivery was handed to the job queue.
type ReorderDispatcher interface {
	DispatchReorder(ctx context.Context, msg infra.ReorderMessage) (queued bool, err error)
}

type ReorderService interface {
	Submit(ctx context.Context, req dto.ReorderRequest) (*dto.ReorderResponse, error)
}

type reorderService struct {
	resolver   ResolverService
	dispatcher ReorderDispatcher
	now        func() time.Time
}

func NewReorderService(resolver ResolverService, dispatcher ReorderDispatcher) ReorderService {
	return &reorderService{resolver: resolver, dispatcher: dispatcher, now: time.Now}
}

func (s *reorderService) Submit(ctx context.Context, req dto.ReorderRequest) (*dto.ReorderResponse, error) {
	if len(req.Lines) == 0 {
		return nil, invalidInput(dto.ErrReorderAllBad.Error())
	}

	lines := make([]dto.ReorderLineResponse, 0, len(req.Lines))
	for _, l := range req.Lines {
		line := dto.ReorderLineResponse{ProductCode: l.ProductCode, Qty: l.Qty, Note: l.Note}
		p, err := s.resolver.ResolveOne(ctx, "", l.ProductCode)
		switch {
		case err == nil:
			line.Description = p.FullDescription
			line.Barcode = p.Barcode
		case errors.Is(err, ErrProductNotFound):
		default:
			return nil, err
		}
		lines = append(lines, line)
	}

	msg := formatReorder(req.RequestedBy, s.now(), lines)
	queued, err := s.dispatcher.DispatchReorder(ctx, msg)
	if err != nil {
		if errors.Is(err, ErrEmailNotConfigured) {
			return nil, err
		}
		log.Error().Err(err).Str("requested_by", req.RequestedBy).Msg("reorder email failed")
		return nil, fmt.Errorf("%w: %w", ErrEmailDelivery, err)
	}

	log.Info().
		Str("requested_by", req.RequestedBy).
		Int("lines", len(lines)).
		Bool("queued", queued).
		Msg("reorder submitted")
	return &dto.ReorderResponse{OK: true, Queued: queued, Lines: lines}, nil
}

func formatReorder(requestedBy string, at time.Time, lines []dto.ReorderLineResponse) infra.ReorderMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Requested by: %s\n", requestedBy)
	fmt.Fprintf(&b, "Time: %s\n\n", at.Format("2006-01-02T15:04:05"))
	b.WriteString("Items:\n")
	for i, l := range lines {
		fmt.Fprintf(&b, "%d. %s", i+1, l.ProductCode)
		if l.Description != "" {
			fmt.Fprintf(&b, " %s", l.Description)
		}
		if l.Barcode != nil {
			fmt.Fprintf(&b, " [%s]", *l.Barcode)
		}
		fmt.Fprintf(&b, "  x%s", l.Qty.String())
		if l.Note != "" {
			fmt.Fprintf(&b, " | Note: %s", l.Note)
		}
		b.WriteByte('\n')
	}
	return infra.ReorderMessage{
		Subject: "Reorder Request - " + at.Format("2006-01-02 15:04"),
		Body:    b.String(),
	}
}
