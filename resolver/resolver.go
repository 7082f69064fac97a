package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"museum-backend/models"
)

// User-facing messages
const (
	MsgInvalidType     = "Invalid QR code type"
	MsgInvalidFormat   = "Invalid QR code format"
	MsgMissingCode     = "Please enter a backup code"
	MsgCancelled       = "This booking has been cancelled and cannot be checked in."
	MsgPendingApproval = "This registration is still awaiting approval."
	MsgRejected        = "This registration was not approved and cannot be checked in."
	MsgCheckinFailed   = "Check-in failed"
)

const defaultTimeout = 10 * time.Second

var alreadyCheckedInPattern = regexp.MustCompile(`(?i)already\s+(been\s+)?checked[\s-]*in`)

// Category is the staff toggle for manual backup codes.
type Category string

const (
	CategoryVisitor Category = "visitor"
	CategoryEvent   Category = "event"
)

// Resolver classifies scans and checks the matching visitor in through the
// check-in API. It keeps no state between calls.
type Resolver struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Resolver)

func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		r.httpClient = c
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New returns a resolver talking to the API at baseURL, e.g.
// "https://museum.example.org".
func New(baseURL string, opts ...Option) *Resolver {
	r := &Resolver{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve classifies a scanned payload and checks the visitor in.
func (r *Resolver) Resolve(ctx context.Context, raw string) Result {
	payload, err := Classify(raw)
	if err != nil {
		r.logger.Info("rejected scan payload", zap.Error(err))
		return classifyFailure(err)
	}

	r.logger.Info("resolving scan", zap.String("flow", string(payload.Flow())))
	result := payload.dispatch(ctx, r).withFlow(payload.Flow())
	r.logger.Info("scan resolved",
		zap.String("flow", string(result.Flow)),
		zap.Stringer("outcome", result.Outcome))
	return result
}

// ResolveManual checks in by backup code. Classification is skipped: the
// category chosen by staff picks the endpoint.
func (r *Resolver) ResolveManual(ctx context.Context, code string, category Category) Result {
	code = strings.TrimSpace(code)
	if code == "" {
		return Failure(MsgMissingCode)
	}

	var result Result
	switch category {
	case CategoryEvent:
		resp, err := r.post(ctx, "/api/event-registrations/checkin", map[string]any{
			"registration_id": code,
			"manual_checkin":  true,
		})
		result = r.normalize(ctx, resp, err, "/api/event-registrations/"+url.PathEscape(code), false).withFlow(FlowManualEvent)
	case CategoryVisitor:
		resp, err := r.post(ctx, "/api/backup-codes/validate", map[string]any{"code": code})
		result = r.normalize(ctx, resp, err, "", false).withFlow(FlowManualVisitor)
	default:
		return Failure("Unknown check-in category: " + string(category))
	}

	r.logger.Info("manual check-in resolved",
		zap.String("category", string(category)),
		zap.Stringer("outcome", result.Outcome))
	return result
}

func (r *Resolver) legacyURL(ctx context.Context, p LegacyVisitURL) Result {
	resp, err := r.get(ctx, r.absoluteURL(p.URL))
	return r.normalize(ctx, resp, err, visitorPath(p.VisitorID), false)
}

func (r *Resolver) eventParticipant(ctx context.Context, p EventParticipant) Result {
	body := map[string]any{"registration_id": p.RegistrationID}
	if p.EventID != "" {
		body["event_id"] = p.EventID
	}
	if p.Email != "" {
		body["email"] = p.Email
	}
	resp, err := r.post(ctx, "/api/event-registrations/checkin", body)
	return r.normalize(ctx, resp, err, "/api/event-registrations/"+url.PathEscape(p.RegistrationID), false)
}

func (r *Resolver) additionalVisitor(ctx context.Context, p AdditionalVisitor) Result {
	token := url.PathEscape(p.TokenID)
	resp, err := r.post(ctx, "/api/additional-visitors/"+token+"/checkin", map[string]any{"qrCodeData": p.Raw})
	return r.normalize(ctx, resp, err, "/api/additional-visitors/"+token, false)
}

func (r *Resolver) groupLeader(ctx context.Context, p GroupLeader) Result {
	resp, err := r.post(ctx, "/api/group-walkin-leaders/"+url.PathEscape(p.VisitorID)+"/checkin", nil)
	return r.normalize(ctx, resp, err, visitorPath(p.VisitorID), false)
}

func (r *Resolver) groupMember(ctx context.Context, p GroupMember) Result {
	token := url.PathEscape(p.Token)
	resp, err := r.post(ctx, "/api/group-walkin-members/"+token+"/checkin", nil)
	return r.normalize(ctx, resp, err, "/api/group-walkin-members/"+token, true)
}

func (r *Resolver) walkin(ctx context.Context, p WalkinIndividual) Result {
	resp, err := r.post(ctx, "/api/walkin-visitors/"+url.PathEscape(p.VisitorID)+"/checkin", nil)
	return r.normalize(ctx, resp, err, visitorPath(p.VisitorID), true)
}

func (r *Resolver) primaryVisitor(ctx context.Context, p PrimaryVisitor) Result {
	resp, err := r.post(ctx, "/api/slots/visit/qr-scan", map[string]any{"qrData": p.Raw})
	return r.normalize(ctx, resp, err, visitorPath(p.VisitorID), false)
}

// normalize maps any API answer onto the four outcomes. lookupPath is used
// to fill in visitor details for already-checked-in answers that omit them.
// guard enables the client-side completeness check for flows where profile
// completion can lag behind registration.
func (r *Resolver) normalize(ctx context.Context, resp *models.CheckinResponse, err error, lookupPath string, guard bool) Result {
	if err != nil {
		r.logger.Warn("check-in request failed", zap.Error(err))
		return Failure(err.Error())
	}

	switch {
	case resp.Status == models.CheckinStatusCancelled:
		return Failure(MsgCancelled)

	case resp.Status == models.CheckinStatusPending:
		return Failure(MsgPendingApproval)

	case resp.Status == models.CheckinStatusRejected:
		return Failure(MsgRejected)

	case resp.Status == models.CheckinStatusIncomplete || resp.Status == models.CheckinStatusFormIncomplete:
		return Incomplete(resp.MissingFields, responseEmail(resp))

	case isAlreadyCheckedIn(resp):
		visitor := resp.Person()
		if visitor == nil {
			visitor = r.lookup(ctx, lookupPath)
		}
		return AlreadyCheckedIn(visitor)

	case resp.Success:
		visitor := resp.Person()
		if guard {
			if visitor == nil {
				return Incomplete([]string{models.FieldFirstName, models.FieldLastName, models.FieldGender}, resp.Email)
			}
			if missing := visitor.MissingFields(); len(missing) > 0 {
				r.logger.Info("downgrading check-in of incomplete visitor",
					zap.String("visitor_id", visitor.ID),
					zap.Strings("missing", missing))
				return Incomplete(missing, responseEmail(resp))
			}
		}
		return Success(visitor)
	}

	return Failure(firstNonEmpty(resp.Error, resp.Message, MsgCheckinFailed))
}

func isAlreadyCheckedIn(resp *models.CheckinResponse) bool {
	return resp.AlreadyCheckedIn ||
		resp.Status == models.CheckinStatusAlreadyCheckedIn ||
		alreadyCheckedInPattern.MatchString(resp.Error) ||
		(!resp.Success && alreadyCheckedInPattern.MatchString(resp.Message))
}

func responseEmail(resp *models.CheckinResponse) string {
	if resp.Email != "" {
		return resp.Email
	}
	if v := resp.Person(); v != nil {
		return v.Email
	}
	return ""
}

func visitorPath(id string) string {
	if id == "" {
		return ""
	}
	return "/api/visitors/" + url.PathEscape(id)
}

func classifyFailure(err error) Result {
	switch {
	case errors.Is(err, ErrUnknownType):
		return Failure(MsgInvalidType)
	case errors.Is(err, ErrMissingField):
		return Failure(MsgInvalidFormat + ": " + strings.TrimPrefix(err.Error(), ErrMissingField.Error()+": ") + " missing")
	}
	return Failure(MsgInvalidFormat)
}
