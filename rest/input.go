package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/pouriya/restcommander-sub000/command"
)

const (
	headerStatistics    = "X-Restcommander-Statistics"
	headerRequestedWith = "X-Requested-With"

	OptionClientIP   = "RESTCOMMANDER_CLIENT_IP"
	OptionClientPort = "RESTCOMMANDER_CLIENT_PORT"
	headerPrefix     = "RESTCOMMANDER_HEADER_"
)

// MaxBodySize bounds the JSON body of a run request.
const MaxBodySize = 4 << 20

var specialHeaders = []string{"Content-Type", "User-Agent"}

type structuredBody struct {
	Options    map[string]interface{} `json:"options"`
	Statistics bool                   `json:"statistics"`
}

// Extraction is the input assembled from one HTTP request.
type Extraction struct {
	Input      command.Input
	Statistics bool
}

// ExtractInput merges constants, body, query string, headers and the client
// address into one input map, later sources overriding earlier ones.
func ExtractInput(r *http.Request, constants command.Input) (*Extraction, error) {
	ret := &Extraction{Input: constants.Clone()}
	if err := decodeBody(r, ret); err != nil {
		return nil, err
	}
	for name, values := range r.URL.Query() {
		if len(values) == 0 {
			continue
		}
		ret.Input[name] = command.ParseValue(values[len(values)-1])
	}
	for name, values := range r.Header {
		if len(values) == 0 {
			continue
		}
		if option, ok := headerOption(name); ok {
			ret.Input[option] = command.ParseValue(values[0])
		}
	}
	for _, name := range specialHeaders {
		if value := r.Header.Get(name); value != "" {
			ret.Input[headerOptionName(name)] = command.String(value)
		}
	}
	if r.Host != "" {
		ret.Input[headerOptionName("Host")] = command.String(r.Host)
	}
	if value := r.Header.Get(headerStatistics); value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s header %q: %w", headerStatistics, value, err)
		}
		ret.Statistics = ret.Statistics || enabled
	}
	ip, port := clientAddress(r)
	ret.Input[OptionClientIP] = command.String(ip)
	if port > 0 {
		ret.Input[OptionClientPort] = command.Integer(int64(port))
	}
	return ret, nil
}

func decodeBody(r *http.Request, ret *Extraction) error {
	if r.Body == nil {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize))
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var raw map[string]interface{}
	if err := decoder.Decode(&raw); err != nil {
		return fmt.Errorf("request body deserialize error: %w", err)
	}
	options := raw
	if nested, ok := raw["options"].(map[string]interface{}); ok {
		body := &structuredBody{}
		if err := json.Unmarshal(data, body); err != nil {
			return fmt.Errorf("request body deserialize error: %w", err)
		}
		options = nested
		ret.Statistics = body.Statistics
	}
	input, err := command.InputOf(options)
	if err != nil {
		return fmt.Errorf("request body deserialize error: %w", err)
	}
	ret.Input.Merge(input)
	return nil
}

func headerOption(name string) (string, bool) {
	if !strings.HasPrefix(name, "X-") || len(name) == 2 {
		return "", false
	}
	if strings.EqualFold(name, headerStatistics) || strings.EqualFold(name, headerRequestedWith) {
		return "", false
	}
	return strings.ReplaceAll(strings.ToLower(name[2:]), "-", "_"), true
}

func headerOptionName(name string) string {
	return headerPrefix + strings.ReplaceAll(strings.ToUpper(name), "-", "_")
}

func clientAddress(r *http.Request) (string, int) {
	host, port, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr, 0
	}
	value, _ := strconv.Atoi(port)
	return host, value
}
