// Package notifier turns repository request payloads into threaded
// notification emails and hands them to a mail transport.
//
// The first email about a request opens a thread; its Message-ID is the
// thread identity the workflow stores and passes back for every later
// update, comment and approval. The subject never changes, so mail clients
// group the conversation purely through In-Reply-To and References.
//
// Delivery is best effort. A transport failure is logged and reported in the
// returned Outcome, never as an error, so a broken relay cannot fail the
// surrounding workflow. Errors are reserved for payloads that cannot be
// turned into a message at all.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/danielolaszy/reqmail/internal/config"
	"github.com/danielolaszy/reqmail/internal/github"
	"github.com/danielolaszy/reqmail/internal/logging"
	"github.com/danielolaszy/reqmail/internal/mail"
	"github.com/danielolaszy/reqmail/pkg/models"
	"github.com/google/uuid"
)

const (
	subjectPrefix = "Requesting New Github Repository"
	subjectLayout = "2006-01-02 15:04"
)

// ErrInvalidTimestamp is returned when the payload timestamp is not ISO-8601.
var ErrInvalidTimestamp = errors.New("invalid request timestamp")

// timestampLayouts are the ISO-8601 forms accepted for the request timestamp.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Transport delivers a finished message. Implementations make a single
// attempt and do not retry.
type Transport interface {
	Deliver(ctx context.Context, msg *mail.Message) error
}

// Outcome reports what happened to a message after construction succeeded.
type Outcome struct {
	MessageID string
	Delivered bool
	// Err is the transport error when Delivered is false.
	Err error
}

// Notifier composes and sends the emails for each workflow action.
type Notifier struct {
	sender                 string
	receiver               string
	enterpriseOrganization string
	githubDomain           string
	idDomain               string
	transport              Transport
}

// New creates a Notifier. Every message goes From cfg.Mail.Sender To
// cfg.Mail.Receiver; the payload's lead address is shown in the body only.
func New(cfg config.Config, transport Transport) *Notifier {
	return &Notifier{
		sender:                 cfg.Mail.Sender,
		receiver:               cfg.Mail.Receiver,
		enterpriseOrganization: cfg.Workflow.EnterpriseOrganization,
		githubDomain:           cfg.GitHub.Domain,
		idDomain:               messageIDDomain(cfg.Mail.Sender),
		transport:              transport,
	}
}

// Notify dispatches to the operation for action. For create the returned
// thread is the new one; otherwise it is thread unchanged.
func (n *Notifier) Notify(ctx context.Context, action models.Action, req *models.RepositoryRequest, thread models.ThreadID) (models.ThreadID, Outcome, error) {
	var (
		outcome Outcome
		err     error
	)
	switch action {
	case models.ActionCreate:
		return n.CreateRequest(ctx, req)
	case models.ActionUpdate:
		outcome, err = n.UpdateRequest(ctx, req, thread)
	case models.ActionComment:
		outcome, err = n.CommentRequest(ctx, req, thread)
	case models.ActionApprove:
		outcome, err = n.ApproveRequest(ctx, req, thread)
	default:
		return "", Outcome{}, fmt.Errorf("unknown action %q", action)
	}
	return thread, outcome, err
}

// CreateRequest announces a new request and returns the thread identity the
// caller must keep for the follow-up emails.
func (n *Notifier) CreateRequest(ctx context.Context, req *models.RepositoryRequest) (models.ThreadID, Outcome, error) {
	msg, err := n.compose(models.ActionCreate, req, "", bodyParams{
		Details: RenderDetails(req, n.enterpriseOrganization),
	})
	if err != nil {
		return "", Outcome{}, err
	}
	return models.ThreadID(msg.MessageID), n.deliver(ctx, models.ActionCreate, msg), nil
}

// UpdateRequest resends the full request details as a reply in thread.
func (n *Notifier) UpdateRequest(ctx context.Context, req *models.RepositoryRequest, thread models.ThreadID) (Outcome, error) {
	msg, err := n.compose(models.ActionUpdate, req, thread, bodyParams{
		Details: RenderDetails(req, n.enterpriseOrganization),
	})
	if err != nil {
		return Outcome{}, err
	}
	return n.deliver(ctx, models.ActionUpdate, msg), nil
}

// CommentRequest sends the reviewer's comments as a reply in thread.
func (n *Notifier) CommentRequest(ctx context.Context, req *models.RepositoryRequest, thread models.ThreadID) (Outcome, error) {
	msg, err := n.compose(models.ActionComment, req, thread, bodyParams{
		Comments: req.Comments,
	})
	if err != nil {
		return Outcome{}, err
	}
	return n.deliver(ctx, models.ActionComment, msg), nil
}

// ApproveRequest confirms the approval with a link to the new repository.
func (n *Notifier) ApproveRequest(ctx context.Context, req *models.RepositoryRequest, thread models.ThreadID) (Outcome, error) {
	msg, err := n.compose(models.ActionApprove, req, thread, bodyParams{
		RepositoryURL: github.RepositoryURL(n.githubDomain, req.Organization, req.RepoName),
	})
	if err != nil {
		return Outcome{}, err
	}
	return n.deliver(ctx, models.ActionApprove, msg), nil
}

func (n *Notifier) compose(action models.Action, req *models.RepositoryRequest, thread models.ThreadID, params bodyParams) (*mail.Message, error) {
	if action != models.ActionCreate && thread == "" {
		logging.Warn("no thread identity supplied, message will start a new conversation",
			"action", action,
			"repo_name", req.RepoName)
	}

	msg, err := n.composeEnvelope(req, thread)
	if err != nil {
		return nil, err
	}

	body, err := renderBody(action, params)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s body: %w", action, err)
	}
	msg.Body = body

	return msg, nil
}

// composeEnvelope fills the headers shared by every action. A fresh
// Message-ID is minted on each call.
func (n *Notifier) composeEnvelope(req *models.RepositoryRequest, thread models.ThreadID) (*mail.Message, error) {
	subject, err := Subject(req.Timestamp)
	if err != nil {
		return nil, err
	}

	msg := &mail.Message{
		From:      n.sender,
		To:        n.receiver,
		Cc:        req.CCList,
		Subject:   subject,
		MessageID: n.newMessageID(),
	}
	if thread != "" {
		msg.InReplyTo = string(thread)
		msg.References = string(thread)
	}
	return msg, nil
}

func (n *Notifier) deliver(ctx context.Context, action models.Action, msg *mail.Message) Outcome {
	if err := n.transport.Deliver(ctx, msg); err != nil {
		logging.Error("failed to send notification",
			"action", action,
			"message_id", msg.MessageID,
			"error", err)
		return Outcome{MessageID: msg.MessageID, Err: err}
	}

	logging.Info("notification sent",
		"action", action,
		"message_id", msg.MessageID,
		"thread_id", msg.References)
	return Outcome{MessageID: msg.MessageID, Delivered: true}
}

func (n *Notifier) newMessageID() string {
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), n.idDomain)
}

// Subject builds the subject line shared by every email about a request,
// with the request timestamp truncated to the minute.
func Subject(timestamp string) (string, error) {
	ts, err := ParseTimestamp(timestamp)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s [%s]", subjectPrefix, ts.Format(subjectLayout)), nil
}

// ParseTimestamp parses an ISO-8601 timestamp, with or without offset and
// fractional seconds. The offset, if any, is kept rather than converted.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// messageIDDomain picks the right-hand side of generated Message-IDs: the
// sender's domain, else the host name.
func messageIDDomain(sender string) string {
	if i := strings.LastIndex(sender, "@"); i >= 0 && i < len(sender)-1 {
		return strings.Trim(sender[i+1:], "<> ")
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "localhost"
}
