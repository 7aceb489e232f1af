package bank

// bankSubjects maps the catalog's category IDs to the bank's subject IDs.
// The two systems grew their taxonomies independently; this table is the
// only bridge between them.
var bankSubjects = map[int64]int64{
	1:  22, // Artes
	2:  1,  // Biologia
	5:  9,  // Espanhol
	6:  10, // Filosofia
	7:  2,  // Física
	8:  3,  // Geografia
	9:  4,  // História
	10: 5,  // Inglês
	11: 7,  // Língua Portuguesa
	12: 6,  // Matemática
	14: 8,  // Química
	15: 11, // Sociologia
}

// SubjectID resolves a catalog category to the bank's subject ID. Categories
// without a mapping search without a subject filter.
func SubjectID(categoryID int64) (int64, bool) {
	id, ok := bankSubjects[categoryID]
	return id, ok
}
