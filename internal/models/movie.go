package models

// Movie describes a single movie card.
type Movie struct {
	Title  string `json:"title"`
	Year   int    `json:"year"`
	Genre  string `json:"genre"`
	Rating string `json:"rating"`
}

// SampleMovie is the card shown on the /movie page.
var SampleMovie = Movie{
	Title:  "Alice in Wonderland",
	Year:   1951,
	Genre:  "Animation, Musical",
	Rating: "7.3/10",
}
