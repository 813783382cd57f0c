// Package store holds the event and participant records behind the
// certificate-data endpoint. Records are imported from CSV at startup
// and served from memory; download activity goes to the download log.
package store

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/youruser/certportal/internal/certificate"
	"github.com/youruser/certportal/internal/util"
)

// Store is the in-memory record index. Reads only after construction,
// so it needs no locking.
type Store struct {
	dataDir      string
	events       map[int]*Event
	participants map[int]*Participant
	byEmail      map[emailKey]*Participant
}

type emailKey struct {
	eventID int
	email   string
}

// New builds the lookup index over loaded records.
func New(dataDir string, events []Event, participants []Participant) *Store {
	s := &Store{
		dataDir:      dataDir,
		events:       make(map[int]*Event, len(events)),
		participants: make(map[int]*Participant, len(participants)),
		byEmail:      make(map[emailKey]*Participant, len(participants)),
	}
	for i := range events {
		e := &events[i]
		s.events[e.ID] = e
	}
	for i := range participants {
		p := &participants[i]
		s.participants[p.ID] = p
		s.byEmail[emailKey{p.EventID, strings.ToLower(p.Email)}] = p
	}
	return s
}

// DataDir returns the directory certificate and template files live
// under ("templates/" and "certificates/" subfolders).
func (s *Store) DataDir() string { return s.dataDir }

// Event returns an event by id, or nil.
func (s *Store) Event(id int) *Event { return s.events[id] }

// Participant returns a participant by id, or nil.
func (s *Store) Participant(id int) *Participant { return s.participants[id] }

// Lookup finds a participant by event and email (case-insensitive).
func (s *Store) Lookup(eventID int, email string) *Participant {
	return s.byEmail[emailKey{eventID, strings.ToLower(strings.TrimSpace(email))}]
}

// VisibleEvents returns publicly listed events, newest id first.
func (s *Store) VisibleEvents() []*Event {
	out := []*Event{}
	for _, e := range s.events {
		if e.Visible {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// DescriptorFor assembles the certificate descriptor payload for a
// participant. assetBase prefixes the certificate/template locations:
// a public base URL for the data endpoint, or the local data dir when
// the portal renders server-side. A nil participant or incomplete
// configuration yields an error payload (with HTTP 200 at the
// endpoint, matching the descriptor contract).
func (s *Store) DescriptorFor(p *Participant, assetBase string) certificate.Payload {
	if p == nil {
		return certificate.Payload{Error: "participant not found"}
	}
	event := s.events[p.EventID]
	if event == nil || !event.Visible {
		return certificate.Payload{Error: "event no longer available"}
	}

	if p.CertificateFile != "" {
		if !util.FileExists(filepath.Join(s.dataDir, "certificates", p.CertificateFile)) {
			return certificate.Payload{Error: "certificate file not found"}
		}
		return certificate.Payload{
			Kind:           certificate.KindCustom,
			CertificateURL: assetBase + "/certificates/" + p.CertificateFile,
		}
	}

	if !event.HasTemplate() || !event.Positioned {
		return certificate.Payload{Error: "certificate not configured"}
	}
	if !util.FileExists(filepath.Join(s.dataDir, "templates", event.TemplateFile)) {
		return certificate.Payload{Error: "certificate template not found"}
	}
	return certificate.Payload{
		Kind:        certificate.KindTemplate,
		TemplateURL: assetBase + "/templates/" + event.TemplateFile,
		Name:        p.Name,
		XPercent:    event.XPercent,
		YPercent:    event.YPercent,
		FontSize:    event.FontSize,
		FontWeight:  event.FontWeight,
		FontFamily:  event.FontFamily,
		FontColor:   event.FontColor,
	}
}

// DownloadFilename builds the attachment name for a participant's
// certificate: StudentName_EventName.png with path separators and
// spaces collapsed to underscores.
func (s *Store) DownloadFilename(p *Participant) string {
	event := s.events[p.EventID]
	eventName := ""
	if event != nil {
		eventName = event.Name
	}
	return sanitizeName(p.Name) + "_" + sanitizeName(eventName) + ".png"
}

func sanitizeName(name string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", "\\", "_")
	return r.Replace(name)
}
