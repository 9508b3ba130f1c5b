// Package randomgen generates plausible contact data for tests and for the load generating client.
package randomgen

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
)

var firstNames = []string{
	"Anna", "Anton", "Berta", "Bruno", "Carla", "Dieter", "Emma", "Erika", "Felix", "Greta",
	"Hans", "Ida", "Jonas", "Julius", "Klara", "Lena", "Marc", "Maria", "Michael", "Nora",
	"Otto", "Paula", "Rudi", "Sophie", "Theo", "Ursula", "Viktor", "Wilma", "Xaver", "Zacharias",
}

var lastNames = []string{
	"Bauer", "Becker", "Fischer", "Hoffmann", "Klein", "Koch", "Krüger", "Lange", "Meyer", "Müller",
	"Mustermann", "Neumann", "Richter", "Schäfer", "Schmidt", "Schneider", "Schulz", "Schwarz", "Wagner", "Weber",
	"Wolf", "Zimmermann", "Novak", "Dvořák", "Rossi", "Bianchi", "Dubois", "Lefebvre", "Smith", "Jones",
}

var domains = []string{"example.com", "example.org", "example.net"}

// PickFirstName returns a random first name.
func PickFirstName() string {
	return firstNames[rand.IntN(len(firstNames))]
}

// PickLastName returns a random last name. Last names contain no spaces.
func PickLastName() string {
	return lastNames[rand.IntN(len(lastNames))]
}

// Email returns an address for the given name that is unique with overwhelming probability.
func Email(firstName, lastName string) string {
	local := strings.ToLower(ascii(firstName) + "." + ascii(lastName))
	return fmt.Sprintf("%s.%s@%s", local, uuid.NewString()[:8], domains[rand.IntN(len(domains))])
}

// ascii drops everything from s that is not a plain ASCII letter.
func ascii(s string) string {
	return strings.Map(func(r rune) rune {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			return r
		}
		return -1
	}, s)
}

// Phone returns a phone number in international format.
func Phone() string {
	return fmt.Sprintf("+49 %03d %07d", rand.IntN(1000), rand.IntN(10_000_000))
}

// Birthday returns a date between 1930 and 2009.
func Birthday() model.Date {
	start := time.Date(1930, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := rand.IntN(80 * 365)
	return model.DateOf(start.AddDate(0, 0, days))
}

// Contact returns a complete set of contact fields, birthday included.
func Contact() model.Fields {
	first, last := PickFirstName(), PickLastName()
	birthday := Birthday()
	return model.Fields{
		FirstName: first,
		LastName:  last,
		Email:     Email(first, last),
		Phone:     Phone(),
		Birthday:  &birthday,
	}
}
