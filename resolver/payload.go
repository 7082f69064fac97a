package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"museum-backend/models"
)

const checkinPathMarker = "/api/visit/checkin/"

// QR code type discriminators
const (
	TypeEventParticipant  = "event_participant"
	TypeEventRegistration = "event_registration"
	TypeAdditionalVisitor = "additional_visitor"
	TypeWalkinVisitor     = "walkin_visitor"
	TypePrimaryVisitor    = "primary_visitor"
)

var (
	ErrInvalidFormat = errors.New("payload is neither a check-in URL nor a JSON object")
	ErrUnknownType   = errors.New("unrecognized QR code type")
	ErrMissingField  = errors.New("payload is missing a required identifier")
)

// groupMemberPattern matches GROUP-<bookingId>-<token>; the token may itself
// contain dashes.
var groupMemberPattern = regexp.MustCompile(`^GROUP-([^-]+)-(.+)$`)

// Flow names the check-in route a payload is sent down.
type Flow string

const (
	FlowLegacyURL         Flow = "legacy_url"
	FlowEventParticipant  Flow = "event_participant"
	FlowAdditionalVisitor Flow = "additional_visitor"
	FlowGroupLeader       Flow = "group_leader"
	FlowGroupMember       Flow = "group_member"
	FlowWalkin            Flow = "walkin_visitor"
	FlowPrimaryVisitor    Flow = "primary_visitor"
	FlowManualEvent       Flow = "manual_event"
	FlowManualVisitor     Flow = "manual_visitor"
)

// Payload is a classified scan. The set of implementations is closed: every
// variant dispatches to its own handler method, so a new variant does not
// compile until the resolver knows how to check it in.
type Payload interface {
	Flow() Flow
	dispatch(ctx context.Context, h handler) Result
}

type handler interface {
	legacyURL(ctx context.Context, p LegacyVisitURL) Result
	eventParticipant(ctx context.Context, p EventParticipant) Result
	additionalVisitor(ctx context.Context, p AdditionalVisitor) Result
	groupLeader(ctx context.Context, p GroupLeader) Result
	groupMember(ctx context.Context, p GroupMember) Result
	walkin(ctx context.Context, p WalkinIndividual) Result
	primaryVisitor(ctx context.Context, p PrimaryVisitor) Result
}

// LegacyVisitURL is an old-style QR code holding the check-in URL itself.
type LegacyVisitURL struct {
	URL       string
	VisitorID string
}

type EventParticipant struct {
	RegistrationID string
	EventID        string
	Email          string
}

type AdditionalVisitor struct {
	TokenID string
	Raw     string
}

type GroupLeader struct {
	VisitorID string
}

type GroupMember struct {
	VisitorID string
	BookingID string
	Token     string
}

type WalkinIndividual struct {
	VisitorID string
}

type PrimaryVisitor struct {
	VisitorID string
	Raw       string
}

func (LegacyVisitURL) Flow() Flow    { return FlowLegacyURL }
func (EventParticipant) Flow() Flow  { return FlowEventParticipant }
func (AdditionalVisitor) Flow() Flow { return FlowAdditionalVisitor }
func (GroupLeader) Flow() Flow       { return FlowGroupLeader }
func (GroupMember) Flow() Flow       { return FlowGroupMember }
func (WalkinIndividual) Flow() Flow  { return FlowWalkin }
func (PrimaryVisitor) Flow() Flow    { return FlowPrimaryVisitor }

func (p LegacyVisitURL) dispatch(ctx context.Context, h handler) Result {
	return h.legacyURL(ctx, p)
}

func (p EventParticipant) dispatch(ctx context.Context, h handler) Result {
	return h.eventParticipant(ctx, p)
}

func (p AdditionalVisitor) dispatch(ctx context.Context, h handler) Result {
	return h.additionalVisitor(ctx, p)
}

func (p GroupLeader) dispatch(ctx context.Context, h handler) Result {
	return h.groupLeader(ctx, p)
}

func (p GroupMember) dispatch(ctx context.Context, h handler) Result {
	return h.groupMember(ctx, p)
}

func (p WalkinIndividual) dispatch(ctx context.Context, h handler) Result {
	return h.walkin(ctx, p)
}

func (p PrimaryVisitor) dispatch(ctx context.Context, h handler) Result {
	return h.primaryVisitor(ctx, p)
}

// rawPayload is the union of every field any QR generation has used. Both
// camelCase and snake_case spellings of the registration and event ids are
// accepted; camelCase wins when both are present.
type rawPayload struct {
	Type                string            `json:"type"`
	RegistrationID      models.FlexString `json:"registrationId"`
	RegistrationIDSnake models.FlexString `json:"registration_id"`
	EventID             models.FlexString `json:"eventId"`
	EventIDSnake        models.FlexString `json:"event_id"`
	Email               string            `json:"email"`
	TokenID             models.FlexString `json:"tokenId"`
	VisitorID           models.FlexString `json:"visitorId"`
	IsGroupLeader       json.RawMessage   `json:"isGroupLeader"`
}

func (p *rawPayload) registrationID() string {
	return firstNonEmpty(p.RegistrationID.String(), p.RegistrationIDSnake.String())
}

func (p *rawPayload) eventID() string {
	return firstNonEmpty(p.EventID.String(), p.EventIDSnake.String())
}

// groupLeader is true only for a literal JSON true.
func (p *rawPayload) groupLeader() bool {
	return string(p.IsGroupLeader) == "true"
}

// Classify turns a decoded scan into a payload variant. The first matching
// rule wins: check-in URL, event participant, additional visitor, walk-in
// (leader, member, individual), primary visitor.
func Classify(raw string) (Payload, error) {
	input := strings.TrimSpace(raw)

	if strings.Contains(input, checkinPathMarker) {
		return LegacyVisitURL{URL: input, VisitorID: visitorIDFromURL(input)}, nil
	}

	var p rawPayload
	if err := json.Unmarshal([]byte(input), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	regID := p.registrationID()
	eventID := p.eventID()

	switch {
	case p.Type == TypeEventParticipant || p.Type == TypeEventRegistration || (regID != "" && eventID != ""):
		if regID == "" {
			return nil, fmt.Errorf("%w: registration id", ErrMissingField)
		}
		return EventParticipant{RegistrationID: regID, EventID: eventID, Email: p.Email}, nil

	case p.Type == TypeAdditionalVisitor:
		if p.TokenID == "" {
			return nil, fmt.Errorf("%w: token id", ErrMissingField)
		}
		return AdditionalVisitor{TokenID: p.TokenID.String(), Raw: input}, nil

	case p.Type == TypeWalkinVisitor:
		visitorID := p.VisitorID.String()
		if visitorID == "" {
			return nil, fmt.Errorf("%w: visitor id", ErrMissingField)
		}
		if p.groupLeader() {
			return GroupLeader{VisitorID: visitorID}, nil
		}
		if m := groupMemberPattern.FindStringSubmatch(visitorID); m != nil {
			return GroupMember{VisitorID: visitorID, BookingID: m[1], Token: m[2]}, nil
		}
		return WalkinIndividual{VisitorID: visitorID}, nil

	case p.Type == TypePrimaryVisitor:
		return PrimaryVisitor{VisitorID: p.VisitorID.String(), Raw: input}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownType, p.Type)
}

// visitorIDFromURL returns the path segment following the check-in marker.
func visitorIDFromURL(u string) string {
	idx := strings.Index(u, checkinPathMarker)
	if idx < 0 {
		return ""
	}
	rest := u[idx+len(checkinPathMarker):]
	if end := strings.IndexAny(rest, "/?#"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
