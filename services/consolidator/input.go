package consolidator

// The input batch shape produced by the scraping collaborators: one JSON
// array of commune results per region file. Missing stats sub-fields decode
// to zero.

type CommuneResult struct {
	Commune    string      `json:"commune"`
	Candidates []Candidate `json:"candidates"`
	Stats      BatchStats  `json:"stats"`
}

type Candidate struct {
	Name       string  `json:"name"`
	Party      string  `json:"party"`
	Votes      int64   `json:"votes"`
	Percentage float64 `json:"percentage"`
	Elected    bool    `json:"elected"`
}

type BatchStats struct {
	ValidVotes        int64   `json:"valid_votes"`
	BlankVotes        int64   `json:"blank_votes"`
	NullVotes         int64   `json:"null_votes"`
	TotalVotes        int64   `json:"total_votes"`
	ParticipationRate float64 `json:"participation_rate"`
}

// RegionNames maps the roman-numeral region codes used by the scrapers to
// the canonical display names the jurisdiction table carries.
var RegionNames = map[string]string{
	"XV":   "Región de Arica y Parinacota",
	"I":    "Región de Tarapacá",
	"II":   "Región de Antofagasta",
	"III":  "Región de Atacama",
	"IV":   "Región de Coquimbo",
	"V":    "Región de Valparaíso",
	"RM":   "Región Metropolitana de Santiago",
	"VI":   "Región del Libertador General Bernardo O'Higgins",
	"VII":  "Región del Maule",
	"XVI":  "Región de Ñuble",
	"VIII": "Región del Biobío",
	"IX":   "Región de la Araucanía",
	"XIV":  "Región de Los Ríos",
	"X":    "Región de Los Lagos",
	"XI":   "Región de Aysén del General Carlos Ibáñez del Campo",
	"XII":  "Región de Magallanes y de la Antártica Chilena",
}
