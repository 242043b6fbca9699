package mailer

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultDelay is the pause after each recipient of a bulk send.
const DefaultDelay = 500 * time.Millisecond

// TestSubjectPrefix marks test sends.
const TestSubjectPrefix = "[TEST] "

var (
	ErrDeliveryFailed = errors.New("delivery failed")
	ErrNoTestAddress  = errors.New("test send address is not configured")
)

var (
	metricSent    = expvar.NewInt("mail_sent_total")
	metricFailed  = expvar.NewInt("mail_failed_total")
	metricBatches = expvar.NewInt("mail_batches_total")
)

// Template is a subject/body pair that may contain ${column} placeholders.
type Template struct {
	Subject string
	HTML    string
}

// Personalize substitutes row into subject and body independently.
func (t Template) Personalize(row Row) Template {
	return Template{Subject: Substitute(t.Subject, row), HTML: Substitute(t.HTML, row)}
}

// Dispatcher sends templated messages over one session per call, strictly in sequence.
type Dispatcher struct {
	dialer      Dialer
	builder     *Builder
	delay       time.Duration
	testAddress string
	logger      *logrus.Logger
	sleep       func(time.Duration)
}

type Option func(*Dispatcher)

// WithDelay sets the default pause between recipients of a bulk send.
func WithDelay(d time.Duration) Option { return func(x *Dispatcher) { x.delay = d } }

// WithTestAddress sets the operator address that receives test sends.
func WithTestAddress(addr string) Option { return func(x *Dispatcher) { x.testAddress = addr } }

func WithLogger(l *logrus.Logger) Option { return func(x *Dispatcher) { x.logger = l } }

// WithSleep replaces time.Sleep.
func WithSleep(fn func(time.Duration)) Option { return func(x *Dispatcher) { x.sleep = fn } }

func NewDispatcher(dialer Dialer, builder *Builder, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		dialer:  dialer,
		builder: builder,
		delay:   DefaultDelay,
		logger:  logrus.StandardLogger(),
		sleep:   time.Sleep,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Delay is the configured default pause between bulk recipients.
func (d *Dispatcher) Delay() time.Duration { return d.delay }

// TestAddress is where SendTest delivers.
func (d *Dispatcher) TestAddress() string { return d.testAddress }

type recipient struct {
	address string
	row     Row
}

// SendBulk personalizes tpl for each row and sends it to the row's emailColumn
// address. One failed recipient does not stop the batch; its error text is kept in
// the result. delay is slept after every recipient, the last one included.
// A *SessionError means nothing was sent and no results exist.
func (d *Dispatcher) SendBulk(ctx context.Context, tpl Template, rows []Row, emailColumn string, att *Attachment, delay time.Duration) ([]SendResult, error) {
	batch := make([]recipient, 0, len(rows))
	for _, row := range rows {
		batch = append(batch, recipient{address: strings.TrimSpace(row.Get(emailColumn)), row: row})
	}
	return d.run(ctx, tpl, batch, att, delay)
}

// Send delivers tpl to every recipient of set: personalized per row for a bulk
// set, unchanged for a single address.
func (d *Dispatcher) Send(ctx context.Context, tpl Template, set RecipientSet, att *Attachment, delay time.Duration) ([]SendResult, error) {
	if set.IsBulk() {
		return d.SendBulk(ctx, tpl, set.Rows, set.EmailColumn, att, delay)
	}
	res, err := d.SendOne(ctx, tpl, set.Address, att)
	if res.Recipient == "" {
		return nil, err
	}
	return []SendResult{res}, err
}

// SendOne sends tpl unchanged to a single address. Any failure, including the
// server rejecting the message, is returned as an error alongside the result.
func (d *Dispatcher) SendOne(ctx context.Context, tpl Template, to string, att *Attachment) (SendResult, error) {
	results, err := d.run(ctx, tpl, []recipient{{address: strings.TrimSpace(to)}}, att, 0)
	if err != nil {
		return SendResult{}, err
	}
	res := results[0]
	if !res.Outcome.OK() {
		return res, fmt.Errorf("%w to %s: %s", ErrDeliveryFailed, res.Recipient, res.Outcome.Reason)
	}
	return res, nil
}

// SendTest sends tpl with a "[TEST] " subject to the configured test address.
func (d *Dispatcher) SendTest(ctx context.Context, tpl Template, att *Attachment) (SendResult, error) {
	if d.testAddress == "" {
		return SendResult{}, ErrNoTestAddress
	}
	tpl.Subject = TestSubjectPrefix + tpl.Subject
	return d.SendOne(ctx, tpl, d.testAddress, att)
}

func (d *Dispatcher) run(ctx context.Context, tpl Template, batch []recipient, att *Attachment, delay time.Duration) ([]SendResult, error) {
	sess, err := d.dialer.Dial(ctx)
	if err != nil {
		d.logger.WithError(err).WithField("recipients", len(batch)).Error("mail session failed")
		return nil, &SessionError{Err: err}
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			d.logger.WithError(cerr).Warn("mail session close failed")
		}
	}()
	metricBatches.Add(1)

	results := make([]SendResult, 0, len(batch))
	for _, r := range batch {
		results = append(results, d.deliver(ctx, sess, tpl.Personalize(r.row), r.address, att))
		if delay > 0 {
			d.sleep(delay)
		}
	}
	return results, nil
}

func (d *Dispatcher) deliver(ctx context.Context, sess Session, tpl Template, to string, att *Attachment) SendResult {
	res := SendResult{Recipient: to}
	msg, err := d.builder.Build(tpl.Subject, tpl.HTML, to, att)
	if err == nil {
		err = sess.Send(ctx, msg)
	}
	if err != nil {
		metricFailed.Add(1)
		d.logger.WithError(err).WithField("recipient", to).Warn("mail not sent")
		res.Outcome = Failed(err.Error())
		return res
	}
	metricSent.Add(1)
	d.logger.WithField("recipient", to).Debug("mail sent")
	res.Outcome = Sent()
	return res
}
