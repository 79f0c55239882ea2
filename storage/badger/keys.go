package badger

import (
	"fmt"
	"strings"

	"github.com/poiesic/concierge/core"
)

// Key prefixes for different data types
const (
	sessionPrefix        = "sess"
	residencePrefix      = "res"
	residencePlacePrefix = "resplc"
	vocabularyPrefix     = "vocab"
	checkpointPrefix     = "chkpt"
)

// makeSessionKey generates a key for a session by Id.
func makeSessionKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", sessionPrefix, id))
}

// makeResidenceKey generates a key for a residence by Id.
func makeResidenceKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", residencePrefix, id))
}

// makeResidencePlaceKey generates a composite key for the place index.
// Format: prefix:place:id, with place lowercased so lookups ignore case.
func makeResidencePlaceKey(place, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", residencePlacePrefix, strings.ToLower(place), id))
}

// makePartialResidencePlaceKey generates a partial key for place queries.
// Format: prefix:place:
func makePartialResidencePlaceKey(place string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", residencePlacePrefix, strings.ToLower(place)))
}

// makeVocabularyKey generates a key for a field's vocabulary list.
func makeVocabularyKey(field core.Field) []byte {
	return []byte(fmt.Sprintf("%s:%s", vocabularyPrefix, field))
}

// makeCheckpointKey generates a key for job checkpoints.
func makeCheckpointKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s", checkpointPrefix, name))
}
