package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultCaptchaCapacity bounds the number of outstanding challenges.
const DefaultCaptchaCapacity = 10

// Difficulty selects how hard a rendered challenge is.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
)

// Renderer produces challenge text and its base64 encoded image.
type Renderer interface {
	Render(difficulty Difficulty) (text, image string, err error)
}

// Challenge is an issued CAPTCHA.
type Challenge struct {
	ID    string `json:"id"`
	Image string `json:"image"`
}

type entry struct {
	id   string
	text string
}

// CaptchaStore keeps outstanding challenges in a bounded FIFO, evicting the
// oldest on overflow. Each challenge can be answered once.
type CaptchaStore struct {
	mux           sync.Mutex
	entries       []entry
	capacity      int
	caseSensitive bool
	filename      string
	renderer      Renderer
	logger        *slog.Logger
}

// CaptchaOption configures a CaptchaStore.
type CaptchaOption func(*CaptchaStore)

// WithCapacity overrides DefaultCaptchaCapacity.
func WithCapacity(capacity int) CaptchaOption {
	return func(s *CaptchaStore) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// WithCaseSensitive makes answers compare case-sensitively.
func WithCaseSensitive(caseSensitive bool) CaptchaOption {
	return func(s *CaptchaStore) { s.caseSensitive = caseSensitive }
}

// WithFile persists outstanding challenges to filename as "id text" lines.
func WithFile(filename string) CaptchaOption {
	return func(s *CaptchaStore) { s.filename = filename }
}

// WithRenderer replaces the built-in SVG renderer.
func WithRenderer(renderer Renderer) CaptchaOption {
	return func(s *CaptchaStore) { s.renderer = renderer }
}

// WithCaptchaLogger sets the logger used for persistence problems.
func WithCaptchaLogger(logger *slog.Logger) CaptchaOption {
	return func(s *CaptchaStore) { s.logger = logger }
}

// NewCaptchaStore creates a store and loads persisted challenges when a file is set.
func NewCaptchaStore(opts ...CaptchaOption) (*CaptchaStore, error) {
	s := &CaptchaStore{capacity: DefaultCaptchaCapacity, renderer: &SVGRenderer{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.filename != "" {
		if err := s.load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Issue renders a new challenge and records its answer.
func (s *CaptchaStore) Issue(difficulty Difficulty) (*Challenge, error) {
	text, image, err := s.renderer.Render(difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to render captcha: %w", err)
	}
	id := uuid.New().String()
	s.mux.Lock()
	defer s.mux.Unlock()
	s.entries = append(s.entries, entry{id: id, text: text})
	if len(s.entries) > s.capacity {
		s.entries = s.entries[len(s.entries)-s.capacity:]
	}
	if err := s.dump(); err != nil {
		return nil, err
	}
	return &Challenge{ID: id, Image: image}, nil
}

// Compare removes the challenge id and reports whether answer matches it.
func (s *CaptchaStore) Compare(id, answer string) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	for i, candidate := range s.entries {
		if candidate.id != id {
			continue
		}
		s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
		if err := s.dump(); err != nil {
			s.logger.Error("could not persist captcha file", "file", s.filename, "error", err)
		}
		if s.caseSensitive {
			return equal(candidate.text, answer)
		}
		return equal(strings.ToLower(candidate.text), strings.ToLower(answer))
	}
	return false
}

// Len returns the number of outstanding challenges.
func (s *CaptchaStore) Len() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return len(s.entries)
}

func (s *CaptchaStore) load() error {
	data, err := os.ReadFile(s.filename)
	if os.IsNotExist(err) {
		return os.WriteFile(s.filename, nil, 0o600)
	}
	if err != nil {
		return fmt.Errorf("could not load captcha from %q: %w", s.filename, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		if len(s.entries) == s.capacity {
			break
		}
		id, text, ok := strings.Cut(line, " ")
		if !ok {
			s.logger.Error("bad line in captcha file", "file", s.filename, "line", line)
			continue
		}
		s.entries = append(s.entries, entry{id: id, text: text})
	}
	return nil
}

func (s *CaptchaStore) dump() error {
	if s.filename == "" {
		return nil
	}
	lines := make([]string, len(s.entries))
	for i, e := range s.entries {
		lines[i] = e.id + " " + e.text
	}
	return os.WriteFile(s.filename, []byte(strings.Join(lines, "\n")), 0o600)
}

const captchaAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// SVGRenderer draws the challenge text as a noisy SVG image.
type SVGRenderer struct{}

func (r *SVGRenderer) Render(difficulty Difficulty) (string, string, error) {
	length := 5
	if difficulty == Medium {
		length = 6
	}
	text, err := randomString(length)
	if err != nil {
		return "", "", err
	}
	var svg strings.Builder
	width := 30*length + 20
	fmt.Fprintf(&svg, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="50">`, width)
	fmt.Fprintf(&svg, `<rect width="100%%" height="100%%" fill="#f4f4f4"/>`)
	for i := 0; i < 4*length; i++ {
		x1, _ := randomInt(width)
		y1, _ := randomInt(50)
		x2, _ := randomInt(width)
		y2, _ := randomInt(50)
		fmt.Fprintf(&svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#999" stroke-width="1"/>`, x1, y1, x2, y2)
	}
	for i, char := range text {
		rotate, _ := randomInt(40)
		dy, _ := randomInt(10)
		x := 15 + i*30
		fmt.Fprintf(&svg, `<text x="%d" y="%d" font-family="monospace" font-size="28" transform="rotate(%d %d 30)">%c</text>`,
			x, 30+dy, rotate-20, x, char)
	}
	svg.WriteString(`</svg>`)
	return text, base64.StdEncoding.EncodeToString([]byte(svg.String())), nil
}

func randomString(length int) (string, error) {
	ret := make([]byte, length)
	for i := range ret {
		index, err := randomInt(len(captchaAlphabet))
		if err != nil {
			return "", err
		}
		ret[i] = captchaAlphabet[index]
	}
	return string(ret), nil
}

func randomInt(limit int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
