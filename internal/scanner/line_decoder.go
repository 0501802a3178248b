package scanner

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ErrInputClosed is reported when the decoder's input reaches EOF.
var ErrInputClosed = errors.New("scanner: input closed")

// LineDecoder reads keyboard-wedge scanners, which type each code followed
// by a newline. Lines read while stopped are dropped.
type LineDecoder struct {
	r   io.Reader
	now func() time.Time

	once sync.Once
	done chan struct{}

	mu       sync.Mutex
	armed    bool
	ended    error
	onDetect func(string, time.Time)
	onError  func(error)
}

func NewLineDecoder(r io.Reader) *LineDecoder {
	return &LineDecoder{r: r, now: time.Now, done: make(chan struct{})}
}

// OpenLineDecoder reads from a device or file. "-" means stdin.
func OpenLineDecoder(path string) (*LineDecoder, error) {
	if path == "" || path == "-" {
		return NewLineDecoder(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, ClassifyDecoderError(err)
	}
	return NewLineDecoder(f), nil
}

func (d *LineDecoder) Start(onDetect func(string, time.Time), onError func(error)) error {
	d.mu.Lock()
	if d.ended != nil {
		err := d.ended
		d.mu.Unlock()
		return &DecoderUnavailable{Reason: ReasonNoDevice, Err: err}
	}
	d.onDetect = onDetect
	d.onError = onError
	d.armed = true
	d.mu.Unlock()

	d.once.Do(func() { go d.loop() })
	return nil
}

func (d *LineDecoder) Stop() {
	d.mu.Lock()
	d.armed = false
	d.mu.Unlock()
}

// Done is closed once the input is exhausted.
func (d *LineDecoder) Done() <-chan struct{} { return d.done }

// Close closes the underlying reader when it is not stdin.
func (d *LineDecoder) Close() error {
	if c, ok := d.r.(io.Closer); ok && d.r != os.Stdin {
		return c.Close()
	}
	return nil
}

func (d *LineDecoder) loop() {
	defer close(d.done)

	sc := bufio.NewScanner(d.r)
	for sc.Scan() {
		code := strings.TrimSpace(sc.Text())
		if code == "" {
			continue
		}

		d.mu.Lock()
		cb := d.onDetect
		if !d.armed {
			cb = nil
		}
		d.mu.Unlock()

		if cb != nil {
			cb(code, d.now())
		}
	}

	err := sc.Err()
	if err == nil {
		err = ErrInputClosed
	}

	d.mu.Lock()
	d.ended = err
	cb := d.onError
	if !d.armed {
		cb = nil
	}
	d.armed = false
	d.mu.Unlock()

	if cb != nil {
		cb(err)
	}
}
