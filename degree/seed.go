package degree

// Seed returns the fixed sample records written by the ledger's bulk seed.
// Each call returns fresh values.
func Seed() []Degree {
	return []Degree{
		{
			DocType:       DocType,
			ID:            "degree1",
			University:    "University of Central Florida",
			College:       "College of Engineering and Computer Science",
			Program:       "Computer Science",
			DegreeName:    "Bachelor's of Computer Science",
			DegreeLevel:   "Bachelor's",
			Owner:         "Ethan Dean",
			Year:          2026,
			Accreditation: true,
		},
		{
			DocType:       DocType,
			ID:            "degree2",
			University:    "University of Florida",
			College:       "Herbert Wertheim College of Engineering",
			Program:       "Mechanical Engineering",
			DegreeName:    "Bachelor's of Mechanical Engineering",
			DegreeLevel:   "Bachelor's",
			Owner:         "William Joel",
			Year:          2004,
			Accreditation: true,
		},
		{
			DocType:        DocType,
			ID:             "degree3",
			University:     "Massachusetts Institute of Technology",
			College:        "School of Engineering",
			Program:        "Electrical Engineering and Computer Science",
			Honors:         "Summa Cum Laude",
			Specialization: "Artificial Intelligence",
			DegreeName:     "Bachelor's of Electrical Engineering and Computer Science",
			DegreeLevel:    "Bachelor's",
			Owner:          "Alice Johnson",
			Year:           2018,
			Accreditation:  true,
		},
		{
			DocType:        DocType,
			ID:             "degree4",
			University:     "Stanford University",
			College:        "School of Humanities and Sciences",
			Program:        "Mathematics",
			Honors:         "Magna Cum Laude",
			Specialization: "Computational Mathematics",
			DegreeName:     "Bachelor's of Science in Mathematics",
			DegreeLevel:    "Bachelor's",
			Owner:          "Michael Lee",
			Year:           2022,
			Accreditation:  true,
		},
		{
			DocType:        DocType,
			ID:             "degree5",
			University:     "Harvard University",
			College:        "Harvard Business School",
			Program:        "Business Administration",
			Specialization: "Finance",
			DegreeName:     "Master's of Business Administration",
			DegreeLevel:    "Master's",
			Owner:          "Sophia Martinez",
			Year:           2015,
			Accreditation:  true,
		},
		{
			DocType:        DocType,
			ID:             "degree6",
			University:     "California Institute of Technology",
			College:        "Division of Physics, Mathematics, and Astronomy",
			Program:        "Physics",
			Specialization: "Quantum Mechanics",
			DegreeName:     "Doctor of Philosophy in Physics",
			DegreeLevel:    "PhD",
			Owner:          "Daniel Carter",
			Year:           2010,
			Accreditation:  true,
		},
	}
}
