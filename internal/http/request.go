package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode"
)

const (
	maxBodyBytes   = 1 << 20
	maxSourceRunes = 200
)

var errTrailingData = errors.New("unexpected data after JSON body")

// decodeJSON reads one JSON value from a size-limited body. Numbers stay
// json.Number so amounts are not routed through float64.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}

// readBody reads the raw, size-limited request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func queryBool(r *http.Request, key string) (bool, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false", key)
	}
	return b, nil
}

// queryThreshold parses a bucket threshold in [0, 1), returning def when absent.
func queryThreshold(r *http.Request, def float64) (float64, error) {
	v := strings.TrimSpace(r.URL.Query().Get("threshold"))
	if v == "" {
		return def, nil
	}
	t, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(t) || t < 0 || t >= 1 {
		return 0, errors.New("threshold must be a number in [0, 1)")
	}
	return t, nil
}

// sanitizeLabel trims whitespace, drops control characters and caps the
// length of caller-supplied labels such as import sources.
func sanitizeLabel(s, fallback string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if runes := []rune(s); len(runes) > maxSourceRunes {
		s = string(runes[:maxSourceRunes])
	}
	if s == "" {
		return fallback
	}
	return s
}
