// Package interactive provides the command interpreter behind mailbox-demo:
// a readline console and a YAML scenario runner sharing one Session.
package interactive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/mailbox-go/mailbox-go/pkg/log"
	"github.com/mailbox-go/mailbox-go/pkg/mailbox"
	"github.com/mailbox-go/mailbox-go/pkg/observable"
	"github.com/mailbox-go/mailbox-go/pkg/queue"
)

// Command errors.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
	ErrUnknownObject  = errors.New("unknown object")
	ErrObjectExists   = errors.New("object already exists")
)

// Config configures a Session.
type Config struct {
	// Logger receives operational logs from the mailbox and queue.
	Logger *slog.Logger

	// TraceLogger receives mailbox trace events.
	TraceLogger log.Logger

	// Metrics receives mailbox counters.
	Metrics mailbox.Metrics
}

// output serializes writes from the console and the delivery queue and
// keeps a copy of everything written since the last take.
type output struct {
	mu  sync.Mutex
	w   io.Writer
	buf bytes.Buffer
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buf.Write(p)
	return o.w.Write(p)
}

func (o *output) take() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.buf.String()
	o.buf.Reset()
	return s
}

// Watcher is the subscriber of the session mailbox. It prints every message
// it receives.
type Watcher struct {
	out io.Writer

	mu       sync.Mutex
	received int
}

// Print is the method destination used by "sub ... method".
func (w *Watcher) Print(msg *mailbox.Message) {
	w.print("method", msg)
}

// ObserveContext is the destination used by "sub ... context=<label>".
func (w *Watcher) ObserveContext(userContext any, msg *mailbox.Message) {
	w.print(fmt.Sprintf("context(%v)", userContext), msg)
}

// Received returns the number of messages printed.
func (w *Watcher) Received() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.received
}

func (w *Watcher) print(destination string, msg *mailbox.Message) {
	w.mu.Lock()
	w.received++
	w.mu.Unlock()

	name := fmt.Sprintf("%v", msg.Notifier())
	if obj, ok := msg.Notifier().(*observable.Object); ok {
		name = obj.Name()
	}
	fmt.Fprintf(w.out, "  <- %s %s.%s\n", destination, name, msg)
}

// Session holds named observable objects and one mailbox subscribed to them.
type Session struct {
	out    *output
	logger *slog.Logger

	watcher *Watcher
	mbox    *mailbox.Mailbox[Watcher]
	queue   *queue.Serial

	objects map[string]*observable.Object
}

// NewSession creates a session writing command output to out.
func NewSession(out io.Writer, cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	o := &output{w: out}
	w := &Watcher{out: o}

	s := &Session{
		out:     o,
		logger:  cfg.Logger,
		watcher: w,
		objects: make(map[string]*observable.Object),
	}
	s.mbox = mailbox.NewWithConfig(w, mailbox.Config{
		Logger:      cfg.Logger,
		TraceLogger: cfg.TraceLogger,
		Metrics:     cfg.Metrics,
	})
	return s
}

// Watcher returns the session subscriber.
func (s *Session) Watcher() *Watcher {
	return s.watcher
}

// Mailbox returns the session mailbox.
func (s *Session) Mailbox() *mailbox.Mailbox[Watcher] {
	return s.mbox
}

// Object returns the named object.
func (s *Session) Object(name string) (*observable.Object, bool) {
	obj, ok := s.objects[name]
	return obj, ok
}

// Flush waits for queued deliveries, if a queue is installed.
func (s *Session) Flush(ctx context.Context) error {
	if s.queue == nil {
		return nil
	}
	return s.queue.Flush(ctx)
}

// Close closes the mailbox and stops the delivery queue.
func (s *Session) Close() {
	s.mbox.Close()
	if s.queue != nil {
		s.queue.Close()
		s.queue = nil
	}
}

// Execute runs one command line. It reports whether the session should end.
func (s *Session) Execute(line string) (bool, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, nil
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "help", "?":
		s.printHelp()
	case "new", "n":
		err = s.cmdNew(args)
	case "sub", "s":
		err = s.cmdSub(args)
	case "unsub", "u":
		err = s.cmdUnsub(args)
	case "set":
		err = s.cmdSet(args)
	case "insert", "ins":
		err = s.cmdInsert(args)
	case "remove", "rm":
		err = s.cmdRemove(args)
	case "replace", "rep":
		err = s.cmdReplace(args)
	case "queue", "q":
		err = s.cmdQueue(args)
	case "status", "st":
		s.cmdStatus()
	case "quit", "exit":
		return true, nil
	default:
		err = fmt.Errorf("%w: %s (type 'help' for commands)", ErrUnknownCommand, cmd)
	}
	return false, err
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.out, `
Mailbox Demo Commands:
  Objects:
    new <object>                         - Create an observable object
    set <object> <key> <value>           - Set a value (null, 42, text, [a,b])
    insert <object> <key> <index> <v>... - Insert list elements
    remove <object> <key> <index>...     - Remove list elements
    replace <object> <key> <index> <v>   - Replace a list element

  Subscriptions:
    sub <object> <key> [options] [dest]  - Subscribe the mailbox
        options: new|old|initial|prior (default new)
        dest:    closure (default), method, context=<label>
    unsub <object> [key]                 - Unsubscribe one key or the whole object

  Delivery:
    queue [on|off|flush]                 - Show or change the delivery queue

  General:
    status                               - Show objects and subscriptions
    help                                 - Show this help
    quit                                 - Exit`)
}

func (s *Session) object(name string) (*observable.Object, error) {
	obj, ok := s.objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownObject, name)
	}
	return obj, nil
}

func (s *Session) cmdNew(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: new <object>", ErrUsage)
	}
	name := args[0]
	if _, ok := s.objects[name]; ok {
		return fmt.Errorf("%w: %s", ErrObjectExists, name)
	}
	s.objects[name] = observable.New(name)
	fmt.Fprintf(s.out, "Created %s\n", name)
	return nil
}

func (s *Session) cmdSub(args []string) error {
	if len(args) < 2 || len(args) > 4 {
		return fmt.Errorf("%w: sub <object> <key> [options] [closure|method|context=<label>]", ErrUsage)
	}
	obj, err := s.object(args[0])
	if err != nil {
		return err
	}
	key := args[1]

	options := mailbox.OptionNew
	dest := "closure"
	for _, arg := range args[2:] {
		if isDestination(arg) {
			dest = arg
			continue
		}
		if options, err = mailbox.ParseOptions(arg); err != nil {
			return err
		}
	}

	var ok bool
	switch {
	case dest == "closure":
		ok = s.mbox.Subscribe(obj, key, options, func(msg *mailbox.Message) {
			s.watcher.print("closure", msg)
		})
	case dest == "method":
		ok = s.mbox.SubscribeMethod(obj, key, options, "Print")
	default:
		ok = s.mbox.SubscribeContext(obj, key, options, strings.TrimPrefix(dest, "context="))
	}

	if !ok {
		fmt.Fprintf(s.out, "Subscribe %s.%s rejected\n", obj.Name(), key)
		return nil
	}
	fmt.Fprintf(s.out, "Subscribed %s.%s [%s] -> %s\n", obj.Name(), key, options, dest)
	return nil
}

func isDestination(arg string) bool {
	return arg == "closure" || arg == "method" || strings.HasPrefix(arg, "context=")
}

func (s *Session) cmdUnsub(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: unsub <object> [key]", ErrUsage)
	}
	obj, err := s.object(args[0])
	if err != nil {
		return err
	}

	if len(args) == 2 {
		if s.mbox.Unsubscribe(obj, args[1]) {
			fmt.Fprintf(s.out, "Unsubscribed %s.%s\n", obj.Name(), args[1])
		} else {
			fmt.Fprintf(s.out, "Not subscribed to %s.%s\n", obj.Name(), args[1])
		}
		return nil
	}

	if s.mbox.UnsubscribeNotifier(obj) {
		fmt.Fprintf(s.out, "Unsubscribed %s\n", obj.Name())
	} else {
		fmt.Fprintf(s.out, "Not subscribed to %s\n", obj.Name())
	}
	return nil
}

func (s *Session) cmdSet(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: set <object> <key> <value>", ErrUsage)
	}
	obj, err := s.object(args[0])
	if err != nil {
		return err
	}
	obj.Set(args[1], ParseValue(strings.Join(args[2:], " ")))
	return nil
}

func (s *Session) cmdInsert(args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("%w: insert <object> <key> <index> <value>...", ErrUsage)
	}
	obj, err := s.object(args[0])
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid index %q: %w", args[2], err)
	}
	values := make([]any, len(args)-3)
	for i, a := range args[3:] {
		values[i] = ParseValue(a)
	}
	return obj.Insert(args[1], index, values...)
}

func (s *Session) cmdRemove(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: remove <object> <key> <index>...", ErrUsage)
	}
	obj, err := s.object(args[0])
	if err != nil {
		return err
	}
	indexes := make([]int, len(args)-2)
	for i, a := range args[2:] {
		if indexes[i], err = strconv.Atoi(a); err != nil {
			return fmt.Errorf("invalid index %q: %w", a, err)
		}
	}
	return obj.Remove(args[1], indexes...)
}

func (s *Session) cmdReplace(args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("%w: replace <object> <key> <index> <value>", ErrUsage)
	}
	obj, err := s.object(args[0])
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid index %q: %w", args[2], err)
	}
	return obj.Replace(args[1], index, ParseValue(strings.Join(args[3:], " ")))
}

func (s *Session) cmdQueue(args []string) error {
	if len(args) == 0 {
		if s.queue == nil {
			fmt.Fprintln(s.out, "Queue: off (synchronous delivery)")
		} else {
			fmt.Fprintf(s.out, "Queue: on (%s, %d pending, %d executed)\n", s.queue.Name(), s.queue.Len(), s.queue.Executed())
		}
		return nil
	}

	switch strings.ToLower(args[0]) {
	case "on":
		if s.queue != nil {
			fmt.Fprintln(s.out, "Queue already on")
			return nil
		}
		s.queue = queue.NewSerial("demo", queue.WithLogger(s.logger))
		s.mbox.SetMessageQueue(s.queue)
		fmt.Fprintln(s.out, "Queue on")
	case "off":
		if s.queue == nil {
			fmt.Fprintln(s.out, "Queue already off")
			return nil
		}
		s.mbox.SetMessageQueue(nil)
		s.queue.Close()
		s.queue = nil
		fmt.Fprintln(s.out, "Queue off")
	case "flush":
		if err := s.Flush(context.Background()); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Queue flushed")
	default:
		return fmt.Errorf("%w: queue [on|off|flush]", ErrUsage)
	}
	return nil
}

func (s *Session) cmdStatus() {
	fmt.Fprintf(s.out, "Mailbox %s: %d subscriptions, %d messages received\n",
		s.mbox.ID(), s.mbox.SubscriptionCount(), s.watcher.Received())

	if s.queue == nil {
		fmt.Fprintln(s.out, "Queue: off")
	} else {
		fmt.Fprintf(s.out, "Queue: on (%d pending)\n", s.queue.Len())
	}

	if len(s.objects) == 0 {
		fmt.Fprintln(s.out, "No objects")
		return
	}
	for _, name := range sortedKeys(s.objects) {
		obj := s.objects[name]
		fmt.Fprintf(s.out, "%s:\n", name)
		for _, key := range obj.Keys() {
			v, _ := obj.Get(key)
			marker := ""
			if s.mbox.IsSubscribed(obj, key) {
				marker = " *"
			}
			fmt.Fprintf(s.out, "  %s = %s (observers: %d)%s\n", key, FormatValue(v), obj.ObserverCount(key), marker)
		}
	}
}
