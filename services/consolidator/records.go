package consolidator

import (
	"strconv"
	"time"

	"politeia-backend/lib/tabular"
)

// Office is the category of elected position an election fills.
type Office int64

const (
	OfficeMayor     Office = 1
	OfficePresident Office = 2
	OfficeSenator   Office = 3
	OfficeDeputy    Office = 4
)

var officeNames = map[string]Office{
	"mayoral":      OfficeMayor,
	"presidential": OfficePresident,
	"senatorial":   OfficeSenator,
	"deputy":       OfficeDeputy,
}

func ParseOffice(name string) (Office, bool) {
	o, ok := officeNames[name]
	return o, ok
}

// TakesTerm reports whether winning an election for this office seats the
// winner in an office term.
func (o Office) TakesTerm() bool {
	switch o {
	case OfficeMayor, OfficePresident, OfficeSenator, OfficeDeputy:
		return true
	}
	return false
}

const (
	JurisdictionRegion  = "REGION"
	JurisdictionCommune = "COMMUNE"

	TermStatusActive = "ACTIVE"
)

const timestampLayout = "2006-01-02 15:04:05"

// Stamp renders the row-creation timestamp. updated_at always equals
// created_at: no in-place update path exists.
func Stamp(t time.Time) string {
	return t.Format(timestampLayout)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// nullableID renders a foreign key that may be absent (regions have no
// parent jurisdiction).
func nullableID(id int64) string {
	if id == 0 {
		return ""
	}
	return formatID(id)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// One struct per table, fields matching the persisted column order exactly.
// Rows are created once and never mutated; the retraction engine is the only
// thing that removes them.

type Jurisdiction struct {
	ID           int64
	OfficialName string
	CommonName   string
	Type         string
	ParentID     int64
	ExternalCode string
	CreatedAt    string
	UpdatedAt    string
}

func (j Jurisdiction) Table() tabular.Table { return tabular.Jurisdictions }

func (j Jurisdiction) Fields() []string {
	return []string{
		formatID(j.ID), j.OfficialName, j.CommonName, j.Type,
		nullableID(j.ParentID), j.ExternalCode, j.CreatedAt, j.UpdatedAt,
	}
}

type Election struct {
	ID             int64
	OfficeID       Office
	JurisdictionID int64
	ElectionDate   string
	CreatedAt      string
	UpdatedAt      string
}

func (e Election) Table() tabular.Table { return tabular.Elections }

func (e Election) Fields() []string {
	return []string{
		formatID(e.ID), formatID(int64(e.OfficeID)), formatID(e.JurisdictionID),
		e.ElectionDate, e.CreatedAt, e.UpdatedAt,
	}
}

type ElectionResult struct {
	ID                int64
	ElectionID        int64
	JurisdictionID    int64
	ValidVotes        int64
	BlankVotes        int64
	NullVotes         int64
	TotalVotes        int64
	ParticipationRate float64
	CreatedAt         string
	UpdatedAt         string
}

func (r ElectionResult) Table() tabular.Table { return tabular.ElectionResults }

func (r ElectionResult) Fields() []string {
	return []string{
		formatID(r.ID), formatID(r.ElectionID), formatID(r.JurisdictionID),
		formatID(r.ValidVotes), formatID(r.BlankVotes), formatID(r.NullVotes),
		formatID(r.TotalVotes), formatFloat(r.ParticipationRate),
		r.CreatedAt, r.UpdatedAt,
	}
}

type Candidacy struct {
	ID         int64
	ElectionID int64
	PersonID   int64
	PartyID    int64
	Votes      int64
	VoteShare  float64
	Elected    bool
	CreatedAt  string
	UpdatedAt  string
}

func (c Candidacy) Table() tabular.Table { return tabular.Candidacies }

func (c Candidacy) Fields() []string {
	return []string{
		formatID(c.ID), formatID(c.ElectionID), formatID(c.PersonID),
		formatID(c.PartyID), formatID(c.Votes), formatFloat(c.VoteShare),
		formatBool(c.Elected), c.CreatedAt, c.UpdatedAt,
	}
}

type Party struct {
	ID           int64
	OfficialName string
	ShortName    string
	CreatedAt    string
	UpdatedAt    string
}

func (p Party) Table() tabular.Table { return tabular.PoliticalParties }

func (p Party) Fields() []string {
	return []string{
		formatID(p.ID), p.OfficialName, p.ShortName, p.CreatedAt, p.UpdatedAt,
	}
}

type PartyMembership struct {
	ID        int64
	PersonID  int64
	PartyID   int64
	StartedOn string
	CreatedAt string
	UpdatedAt string
}

func (m PartyMembership) Table() tabular.Table { return tabular.PartyMemberships }

func (m PartyMembership) Fields() []string {
	return []string{
		formatID(m.ID), formatID(m.PersonID), formatID(m.PartyID),
		m.StartedOn, m.CreatedAt, m.UpdatedAt,
	}
}

type OfficeTerm struct {
	ID             int64
	PersonID       int64
	OfficeID       Office
	JurisdictionID int64
	StartedOn      string
	Status         string
	CreatedAt      string
	UpdatedAt      string
}

func (t OfficeTerm) Table() tabular.Table { return tabular.OfficeTerms }

func (t OfficeTerm) Fields() []string {
	return []string{
		formatID(t.ID), formatID(t.PersonID), formatID(int64(t.OfficeID)),
		formatID(t.JurisdictionID), t.StartedOn, t.Status, t.CreatedAt, t.UpdatedAt,
	}
}

type Person struct {
	ID              int64
	GivenNames      string
	PaternalSurname string
	CreatedAt       string
	UpdatedAt       string
}

func (p Person) Table() tabular.Table { return tabular.People }

func (p Person) Fields() []string {
	return []string{
		formatID(p.ID), p.GivenNames, p.PaternalSurname, p.CreatedAt, p.UpdatedAt,
	}
}
