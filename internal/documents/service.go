package documents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mycoledger/mycoledger/internal/platform/httpx"
	"github.com/mycoledger/mycoledger/internal/platform/mail"
	"github.com/mycoledger/mycoledger/internal/sales"
	"github.com/mycoledger/mycoledger/internal/shared"
)

// RecordGetter loads sales records.
type RecordGetter interface {
	Get(ctx context.Context, id string) (sales.Record, error)
}

// EmailQueue schedules background delivery of a document.
type EmailQueue interface {
	EnqueueDocumentEmail(ctx context.Context, saleID string, docType DocumentType, to string) error
}

// Config carries the issuer and the optional archive directory.
type Config struct {
	Company    Company
	StorageDir string
}

// Service resolves, renders and delivers sales documents.
type Service struct {
	records RecordGetter
	queue   EmailQueue
	mailer  mail.Sender
	cfg     Config
	logger  *slog.Logger
}

// NewService wires the document service. queue and mailer may be nil when
// email delivery is not configured.
func NewService(records RecordGetter, queue EmailQueue, mailer mail.Sender, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Company.Name == "" {
		cfg.Company = DefaultCompany
	}
	return &Service{records: records, queue: queue, mailer: mailer, cfg: cfg, logger: logger}
}

// Types lists the documents viewable for a sale.
func (s *Service) Types(ctx context.Context, saleID string) ([]DocumentType, error) {
	rec, err := s.records.Get(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return AvailableTypes(rec), nil
}

// View resolves one document of a sale.
func (s *Service) View(ctx context.Context, saleID string, docType DocumentType) (View, error) {
	rec, err := s.records.Get(ctx, saleID)
	if err != nil {
		return View{}, err
	}
	return Resolve(rec, docType, s.cfg.Company)
}

// PDF renders one document of a sale.
func (s *Service) PDF(ctx context.Context, saleID string, docType DocumentType) (View, []byte, error) {
	v, err := s.View(ctx, saleID, docType)
	if err != nil {
		return View{}, nil, err
	}
	data, err := RenderPDF(v)
	if err != nil {
		return View{}, nil, err
	}
	return v, data, nil
}

type emailInput struct {
	To string `validate:"required,email"`
}

// Email checks that the document is viewable and queues its delivery.
func (s *Service) Email(ctx context.Context, saleID string, docType DocumentType, to string) error {
	if err := shared.Validator().Struct(emailInput{To: to}); err != nil {
		return fmt.Errorf("recipient %q: %w", to, httpx.ErrValidation)
	}
	if _, err := s.View(ctx, saleID, docType); err != nil {
		return err
	}
	if s.queue == nil {
		return fmt.Errorf("document email queue not configured")
	}
	if err := s.queue.EnqueueDocumentEmail(ctx, saleID, docType, to); err != nil {
		return fmt.Errorf("enqueue document email: %w", err)
	}
	s.logger.Info("document email queued",
		slog.String("sale_id", saleID),
		slog.String("type", string(docType)))
	return nil
}

// Deliver renders the document and mails it. It runs inside the worker.
func (s *Service) Deliver(ctx context.Context, saleID string, docType DocumentType, to string) error {
	if s.mailer == nil {
		return fmt.Errorf("mailer not configured")
	}
	v, data, err := s.PDF(ctx, saleID, docType)
	if err != nil {
		return err
	}
	if s.cfg.StorageDir != "" {
		if _, err := SavePDF(s.cfg.StorageDir, v, data); err != nil {
			s.logger.Warn("archive document", slog.String("sale_id", saleID), slog.Any("error", err))
		}
	}
	msg := mail.Message{
		To:      []string{to},
		Subject: fmt.Sprintf("%s %s from %s", v.Title, v.InvoiceID, v.Company.Name),
		Body: fmt.Sprintf("Dear %s,\n\nPlease find attached %s %s.\n\nRegards,\n%s\n",
			v.Party.Name, v.Title, v.InvoiceID, v.Company.Name),
		Attachments: []mail.Attachment{{Filename: Filename(v), ContentType: PDFContentType, Data: data}},
	}
	if err := s.mailer.Send(msg); err != nil {
		return err
	}
	s.logger.Info("document emailed", slog.String("sale_id", saleID), slog.String("type", string(docType)))
	return nil
}
