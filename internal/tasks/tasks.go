package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoding for image.Decode
	"log"

	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"

	"github.com/nazotronic/Tourify/internal/config"
	"github.com/nazotronic/Tourify/internal/db"
	"github.com/nazotronic/Tourify/internal/email"
	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/services"
	"github.com/nazotronic/Tourify/internal/storage"
	"github.com/nazotronic/Tourify/internal/utils"
)

// Task types handled by the background worker. Booking emails are declared
// in the services package, which enqueues them.
const (
	TypeImageProcess = "image:process"
)

// ImageTaskPayload is the asynq payload for tour image processing.
type ImageTaskPayload struct {
	S3Key  string `json:"s3_key"`
	TourID string `json:"tour_id"`
}

// NewClient returns an asynq client bound to the same Redis the app uses.
func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// EnqueueImageProcess schedules post-processing of an uploaded tour image.
func EnqueueImageProcess(ctx context.Context, client *asynq.Client, tourID utils.SixID, s3Key string) error {
	payload, err := json.Marshal(ImageTaskPayload{S3Key: s3Key, TourID: tourID.String()})
	if err != nil {
		return fmt.Errorf("failed to marshal image task payload: %w", err)
	}
	task := asynq.NewTask(TypeImageProcess, payload, asynq.Queue("images"))
	if _, err := client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue image task: %w", err)
	}
	return nil
}

// BookingLookup loads a booking directly, bypassing session scoping. The
// worker acts on behalf of the system, not a user.
type BookingLookup func(ctx context.Context, id utils.SixID) (*models.Booking, error)

// UserLookup loads a user directly, bypassing session scoping.
type UserLookup func(ctx context.Context, id utils.SixID) (*models.User, error)

// TaskProcessor handles the processing of background tasks. It holds the
// dependencies needed by the task handlers.
type TaskProcessor struct {
	cfg            *config.Config
	emailSender    email.Sender
	storageService storage.IS3Storage
	tourService    services.ITourService
	findBooking    BookingLookup
	findUser       UserLookup
}

// NewTaskProcessor wires a TaskProcessor.
func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	storageService storage.IS3Storage,
	tourService services.ITourService,
	findBooking BookingLookup,
	findUser UserLookup,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:            cfg,
		emailSender:    emailSender,
		storageService: storageService,
		tourService:    tourService,
		findBooking:    findBooking,
		findUser:       findUser,
	}
}

// SetupServer configures an Asynq server and its handler mux. The caller
// runs srv.Run(mux) in a goroutine and srv.Shutdown() on exit.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"images":   5,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(services.TypeBookingEmail, processor.HandleBookingEmailTask)
	mux.HandleFunc(services.TypeSupportEmail, processor.HandleSupportEmailTask)
	mux.HandleFunc(TypeImageProcess, processor.HandleImageProcessTask)
	log.Println("Registered background task handlers")

	return srv, mux
}

// HandleBookingEmailTask sends the booking notification email for a created
// or decided booking.
func (p *TaskProcessor) HandleBookingEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload services.BookingEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal booking email payload: %v: %w", err, asynq.SkipRetry)
	}

	bookingID, err := utils.ParseSixID(payload.BookingID)
	if err != nil {
		log.Printf("Invalid booking ID in email task payload: %s", payload.BookingID)
		return fmt.Errorf("invalid booking ID in payload: %w", asynq.SkipRetry)
	}

	booking, err := p.findBooking(ctx, bookingID)
	if err != nil {
		if db.IsKind(err, db.KindNotFound) {
			log.Printf("Booking %s no longer exists, dropping email task", payload.BookingID)
			return fmt.Errorf("booking not found: %w", asynq.SkipRetry)
		}
		return err
	}

	// A new request is reviewed by the admin; decisions go to the customer.
	to := p.cfg.AdminEmail
	if payload.Event == "decided" {
		to = booking.Contact.Email
		if to == "" {
			if user, userErr := p.findUser(ctx, booking.UserID); userErr == nil {
				to = user.Email
			}
		}
	}
	if to == "" {
		log.Printf("No recipient for booking %s email, dropping task", payload.BookingID)
		return fmt.Errorf("no recipient: %w", asynq.SkipRetry)
	}

	subject, body := bookingEmailContent(booking, payload.Event, p.cfg.AppName)
	rawMessage := email.ComposeMessage(p.cfg.SmtpFromAddress, []string{to}, subject, body)

	if err := p.emailSender.Send(ctx, []string{to}, subject, rawMessage); err != nil {
		log.Printf("Booking email for %s failed, will retry: %v", payload.BookingID, err)
		return err
	}

	log.Printf("Booking email sent: booking=%s event=%s to=%s", payload.BookingID, payload.Event, to)
	return nil
}

func bookingEmailContent(booking *models.Booking, event, appName string) (string, string) {
	switch {
	case event == "decided" && booking.Status == models.BookingStatusConfirmed:
		return fmt.Sprintf("%s: booking confirmed", appName),
			fmt.Sprintf("Good news, %s!\n\nYour booking for %q (start %s, %d people) has been confirmed.\n",
				booking.Contact.FullName, booking.TourTitle, booking.StartDate, booking.People)
	case event == "decided" && booking.Status == models.BookingStatusCancelled:
		return fmt.Sprintf("%s: booking cancelled", appName),
			fmt.Sprintf("Hello %s,\n\nUnfortunately your booking for %q (start %s) has been cancelled.\n",
				booking.Contact.FullName, booking.TourTitle, booking.StartDate)
	default:
		return fmt.Sprintf("%s: new booking request", appName),
			fmt.Sprintf("New booking request awaiting review.\n\nTour: %q\nStart: %s\nPeople: %d\nContact: %s <%s>\n",
				booking.TourTitle, booking.StartDate, booking.People, booking.Contact.FullName, booking.Contact.Email)
	}
}

// HandleSupportEmailTask notifies the support inbox about a new message. The
// payload is self-contained; the sender's account is loaded only to show a
// reply address.
func (p *TaskProcessor) HandleSupportEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload services.SupportEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal support email payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.cfg.AdminEmail == "" {
		log.Printf("No support inbox configured, dropping support email task %s", payload.MessageID)
		return fmt.Errorf("no recipient: %w", asynq.SkipRetry)
	}

	from := "a signed-in user"
	if userID, err := utils.ParseSixID(payload.UserID); err == nil {
		if user, userErr := p.findUser(ctx, userID); userErr == nil {
			from = fmt.Sprintf("%s <%s>", user.FullName, user.Email)
		}
	}

	subject := fmt.Sprintf("%s: new support message", p.cfg.AppName)
	body := fmt.Sprintf("New support message from %s (id %s):\n\n%s\n", from, payload.MessageID, payload.Message)
	rawMessage := email.ComposeMessage(p.cfg.SmtpFromAddress, []string{p.cfg.AdminEmail}, subject, body)

	if err := p.emailSender.Send(ctx, []string{p.cfg.AdminEmail}, subject, rawMessage); err != nil {
		log.Printf("Support email for %s failed, will retry: %v", payload.MessageID, err)
		return err
	}
	return nil
}

// HandleImageProcessTask normalizes an uploaded tour image: downloads it
// from S3, shrinks it to the configured maximum dimension, re-encodes as
// JPEG and records the key on the tour.
func (p *TaskProcessor) HandleImageProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ImageTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal image task payload: %v: %w", err, asynq.SkipRetry)
	}

	tourID, err := utils.ParseSixID(payload.TourID)
	if err != nil {
		log.Printf("Invalid tour ID in image task payload: %s", payload.TourID)
		return fmt.Errorf("invalid tour ID in payload: %w", asynq.SkipRetry)
	}

	log.Printf("Processing image task: S3Key=%s, TourID=%s", payload.S3Key, payload.TourID)

	imgData, contentType, err := p.storageService.GetObject(ctx, payload.S3Key)
	if err != nil {
		return fmt.Errorf("failed to download image from S3: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		log.Printf("Error decoding image for key %s: %v", payload.S3Key, err)
		return fmt.Errorf("unsupported image format or corrupt image: %w", asynq.SkipRetry)
	}
	log.Printf("Decoded image %s, format: %s, size: %dx%d", payload.S3Key, format, img.Bounds().Dx(), img.Bounds().Dy())

	maxDim := uint(p.cfg.ImageMaxDimension)
	if uint(img.Bounds().Dx()) > maxDim || uint(img.Bounds().Dy()) > maxDim {
		resizedImg := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, resizedImg, &jpeg.Options{Quality: 85}); err != nil {
			return fmt.Errorf("failed to re-encode resized image: %w", err)
		}
		imgData = buf.Bytes()
		contentType = "image/jpeg"
		log.Printf("Resized image %s to %dx%d", payload.S3Key, resizedImg.Bounds().Dx(), resizedImg.Bounds().Dy())

		if err := p.storageService.PutObject(ctx, payload.S3Key, imgData, contentType); err != nil {
			return fmt.Errorf("failed to upload processed image: %w", err)
		}
	}

	if err := p.tourService.SetImage(ctx, tourID, payload.S3Key); err != nil {
		if db.IsKind(err, db.KindNotFound) {
			log.Printf("Tour %s no longer exists, dropping image task", payload.TourID)
			return fmt.Errorf("tour not found: %w", asynq.SkipRetry)
		}
		return fmt.Errorf("failed to record image on tour: %w", err)
	}

	log.Printf("Image task processed successfully: Key=%s, TourID=%s", payload.S3Key, payload.TourID)
	return nil
}
