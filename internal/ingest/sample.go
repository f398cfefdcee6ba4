package ingest

import (
	"fmt"
	"math/rand"
)

// scenario is a synthetic case template. Descriptions deliberately cover the
// full weapon-keyword surface, including negated and unarmed phrasings.
type scenario struct {
	title       string
	description string
	category    string
}

var scenarios = []scenario{
	{"ARMED ROBBERY SUSPECT", "Wanted for armed robbery of a credit union, suspect brandished a handgun and fled", "Violent Crime"},
	{"HOMICIDE SUSPECT", "Wanted in connection with a fatal shooting outside a nightclub, firearm recovered", "Violent Crime"},
	{"AGGRAVATED ASSAULT", "Suspect stabbed a victim with a knife during a street altercation", "Violent Crime"},
	{"KIDNAPPING SUSPECT", "Wanted for the kidnapping of a minor, last seen driving a grey sedan", "Crimes Against Children"},
	{"BANK FRAUD SCHEME", "Orchestrated a wire fraud and money laundering scheme through shell companies", "White Collar Crime"},
	{"EMBEZZLEMENT CASE", "Former comptroller accused of embezzlement of municipal funds", "White Collar Crime"},
	{"DRUG TRAFFICKING RING", "Led a narcotics trafficking organization moving methamphetamine across state lines", "Drug Related"},
	{"FENTANYL DISTRIBUTION", "Wanted for distribution of fentanyl resulting in multiple overdoses", "Drug Related"},
	{"RANSOMWARE OPERATOR", "Deployed ransomware against hospital networks and demanded cryptocurrency payments", "Cyber Crime"},
	{"PHISHING CAMPAIGN", "Ran a phishing and identity theft operation targeting retirees", "Cyber Crime"},
	{"RACKETEERING CHARGES", "Senior member of an organized crime syndicate charged with racketeering and extortion", "Organized Crime"},
	{"GANG VIOLENCE", "Gang member wanted for a drive-by shooting with an assault rifle", "Violent Crime"},
	{"TERRORISM SUSPECT", "Plotted a bombing of a federal building, considered armed and dangerous", "Terrorism"},
	{"SEXUAL ASSAULT SUSPECT", "Wanted for sexual assault, the suspect was unarmed during the offense", "Violent Crime"},
	{"CARJACKING SUSPECT", "Carjacked a vehicle at gunpoint near a shopping mall", "Violent Crime"},
	{"ARSON INVESTIGATION", "Set fire to a commercial warehouse, no weapon involved", "Property Crime"},
	{"BURGLARY SERIES", "Linked to a series of residential burglaries, entered through unlocked doors without weapon", "Property Crime"},
	{"ASSAULT WITH BAT", "Beat a victim with a baseball bat outside a bar", "Violent Crime"},
	{"COUNTERFEITING OPERATION", "Produced and passed counterfeit currency across three states", "White Collar Crime"},
	{"MACHETE ATTACK", "Attacked two victims with a machete, believed armed", "Violent Crime"},
}

// weightedStates concentrates 35% of records in the three most-covered
// states (50/30/20 between them); the remainder spreads uniformly.
var (
	heavyStates   = []string{"California", "Texas", "Florida"}
	heavyCum      = []float64{0.50, 0.80, 1.00}
	uniformStates = []string{
		"New York", "Pennsylvania", "Illinois", "Ohio", "Georgia",
		"North Carolina", "Michigan", "New Jersey", "Virginia", "Washington",
		"Arizona", "Massachusetts", "Tennessee", "Indiana", "Missouri",
		"Maryland", "Wisconsin", "Colorado", "Minnesota", "Alabama",
	}
)

// Sample generates deterministic synthetic case records: the same seed and
// count always yield byte-identical records.
func Sample(count int, seed int64) []WantedCase {
	rng := rand.New(rand.NewSource(seed))

	cases := make([]WantedCase, 0, count)
	for i := 0; i < count; i++ {
		sc := scenarios[rng.Intn(len(scenarios))]
		published := sampleDate(rng)

		wc := WantedCase{
			UID:           fmt.Sprintf("sample-%06d", i),
			Title:         sc.title,
			Description:   sc.description,
			Category:      sc.category,
			PublishedDate: published,
			State:         sampleState(rng),
			URL:           fmt.Sprintf("https://example.org/wanted/sample-%06d", i),
		}
		cases = append(cases, wc)
	}
	return cases
}

func sampleState(rng *rand.Rand) string {
	if rng.Float64() < 0.35 {
		roll := rng.Float64()
		for i, cum := range heavyCum {
			if roll < cum {
				return heavyStates[i]
			}
		}
		return heavyStates[len(heavyStates)-1]
	}
	return uniformStates[rng.Intn(len(uniformStates))]
}

// sampleDate skews publication years 55% 2023, 30% 2022, 15% 2020-2021.
func sampleDate(rng *rand.Rand) string {
	roll := rng.Float64()
	var year int
	switch {
	case roll < 0.55:
		year = 2023
	case roll < 0.85:
		year = 2022
	default:
		year = 2020 + rng.Intn(2)
	}
	month := 1 + rng.Intn(12)
	day := 1 + rng.Intn(28)
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// StoreSample generates and stores synthetic records. Roughly 40% are marked
// resolved with a removal date after the publication date.
func (ing *Ingestor) StoreSample(count int, seed int64) *Result {
	r := &Result{Sources: make(map[string]int)}
	rng := rand.New(rand.NewSource(seed + 1))

	cases := Sample(count, seed)
	for i := range cases {
		if rng.Float64() < 0.40 {
			cases[i].PublishedDate, cases[i].RemovedDate = resolve(cases[i].PublishedDate, rng)
		}
	}

	ing.store(r, cases, "sample")
	return r
}

// resolve keeps the publication date and adds a removal date 10-700 days
// later, capped within the same calendar frame the generator uses.
func resolve(published string, rng *rand.Rand) (string, string) {
	var year, month, day int
	fmt.Sscanf(published, "%d-%d-%d", &year, &month, &day)

	span := 10 + rng.Intn(690)
	endYear := year
	endMonth := month
	endDay := day + span
	for endDay > 28 {
		endDay -= 28
		endMonth++
		if endMonth > 12 {
			endMonth = 1
			endYear++
		}
	}
	return published, fmt.Sprintf("%04d-%02d-%02d", endYear, endMonth, endDay)
}
