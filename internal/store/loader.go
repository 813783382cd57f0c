package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/youruser/certportal/internal/certificate"
)

// LoadFromDataDir loads events.csv and participants.csv from a data
// directory and builds the lookup store.
func LoadFromDataDir(dataDir string) (*Store, error) {
	events, err := loadEventsCSV(filepath.Join(dataDir, "events.csv"))
	if err != nil {
		return nil, err
	}
	participants, err := loadParticipantsCSV(filepath.Join(dataDir, "participants.csv"))
	if err != nil {
		return nil, err
	}
	return New(dataDir, events, participants), nil
}

func loadEventsCSV(path string) ([]Event, error) {
	rows, cols, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	out := []Event{}
	for _, row := range rows {
		e := Event{
			Name:        get(row, "name"),
			Description: get(row, "description"),
			Visible:     parseBool(get(row, "visible"), true),

			TemplateFile: get(row, "template_file"),
			FontColor:    get(row, "font_color"),
			FontFamily:   get(row, "font_family"),
			FontWeight:   get(row, "font_weight"),
		}
		e.ID, _ = strconv.Atoi(get(row, "id"))

		xs, ys := get(row, "x_percent"), get(row, "y_percent")
		if xs != "" && ys != "" {
			e.XPercent, _ = strconv.ParseFloat(xs, 64)
			e.YPercent, _ = strconv.ParseFloat(ys, 64)
			e.Positioned = true
		}
		if fs := get(row, "font_size"); fs != "" {
			e.FontSize, _ = strconv.ParseFloat(fs, 64)
		}
		if e.FontSize <= 0 {
			e.FontSize = certificate.DefaultFontSize
		}
		if e.FontColor == "" {
			e.FontColor = certificate.DefaultFontColor
		}
		if e.FontWeight == "" {
			e.FontWeight = certificate.DefaultFontWeight
		}

		out = append(out, e)
	}
	return out, nil
}

func loadParticipantsCSV(path string) ([]Participant, error) {
	rows, cols, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	out := []Participant{}
	for _, row := range rows {
		p := Participant{
			Name:            get(row, "name"),
			Email:           strings.ToLower(get(row, "email")),
			CertificateFile: get(row, "certificate_file"),
		}
		p.ID, _ = strconv.Atoi(get(row, "id"))
		p.EventID, _ = strconv.Atoi(get(row, "event_id"))
		out = append(out, p)
	}
	return out, nil
}

// readCSV returns the data rows and a header-name index map.
func readCSV(path string) ([][]string, map[string]int, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer fp.Close()

	r := csv.NewReader(fp)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, nil, fmt.Errorf("csv %s has no header", path)
	}
	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.TrimSpace(h)] = i
	}
	return rows[1:], cols, nil
}

func parseBool(s string, def bool) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return def
	}
}
