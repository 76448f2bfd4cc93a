package importer

import "dolce-almacen/internal/normalize"

// DefaultUnit is assigned to created items whose raw unit text matches
// nothing in the vocabulary.
const DefaultUnit = "un"

// unitVocabulary maps normalized raw unit text to the canonical unit codes
// the catalog uses. The exports are hand-typed, so the vocabulary covers the
// spellings actually seen in the documents.
var unitVocabulary = map[string]string{
	"kg": "kg", "kgs": "kg", "kilo": "kg", "kilos": "kg", "kilogramo": "kg", "kilogramos": "kg",
	"g": "g", "gr": "g", "grs": "g", "gramo": "g", "gramos": "g",
	"l": "l", "lt": "l", "lts": "l", "litro": "l", "litros": "l",
	"ml": "ml", "mililitro": "ml", "mililitros": "ml",
	"un": "un", "u": "un", "ud": "un", "uds": "un", "unidad": "un", "unidades": "un",
	"pza": "un", "pzas": "un", "pieza": "un", "piezas": "un",
	"caja": "caja", "cajas": "caja", "cj": "caja",
	"paq": "paquete", "paquete": "paquete", "paquetes": "paquete",
	"docena": "docena", "doc": "docena",
}

// InferUnit resolves free-form unit text to a canonical unit code, falling
// back to the generic "each" unit.
func InferUnit(rawUnit string) string {
	if unit, ok := unitVocabulary[normalize.Key(rawUnit)]; ok {
		return unit
	}
	return DefaultUnit
}
