package models

// Joke is a setup line ending in a question mark and its punchline.
type Joke struct {
	Setup     string `json:"setup"`
	Punchline string `json:"punchline"`
}

// JokeDraw is a joke setup presented to the user, punchline withheld.
type JokeDraw struct {
	Setup      string `json:"setup"`
	Told       int    `json:"told"`
	FunnyMeter int    `json:"funny_meter"`
}
