package app

// SeedQuote is one curated default entry.
type SeedQuote struct {
	Text   string
	Author string
}

// DefaultSeeds is the curated content written into an empty category.
var DefaultSeeds = map[string][]SeedQuote{
	"Wisdom": {
		{"Honesty is the first chapter in the book of wisdom.", "Thomas Jefferson"},
		{"The art of being wise is the art of knowing what to overlook.", "William James"},
		{"Look for the answer inside your question.", "Rumi"},
		{"The years teach much which the days never know.", "Ralph Waldo Emerson"},
		{"The only true wisdom is in knowing you know nothing.", "Socrates"},
	},
	"Art": {
		{"Reason is powerless in the expression of Love.", "Rumi"},
		{"The secret of life is in art.", "Oscar Wilde"},
		{"To create one's world in any of the arts takes courage.", "Georgia O'Keeffe"},
		{"Art is not what you see, but what you make others see.", "Edgar Degas"},
		{"Every artist was first an amateur.", "Ralph Waldo Emerson"},
	},
	"Success": {
		{"When it looks impossible and you are ready to quit, victory is near.", "Tony Robbins"},
		{"Your time is limited, so don't waste it living someone else's life.", "Steve Jobs"},
		{"If you can dream it, you can do it.", "Walt Disney"},
		{"There is no elevator to success, you have to take the stairs.", "Zig Ziglar"},
		{"Success is not final, failure is not fatal: it is the courage to continue that counts.", "Winston Churchill"},
	},
	"Friendship": {
		{"Friendship needs no words.", "Dag Hammarskjold"},
		{"We do not remember days, we remember moments.", "Cesare Pavese"},
		{"No friendship is an accident.", "O. Henry"},
		{"Once you pledge, don't hedge.", "Nikita Khrushchev"},
		{"A friend is someone who knows all about you and still loves you.", "Elbert Hubbard"},
	},
	"Positive": {
		{"Liberty means responsibility. That is why most people dread it.", "George Bernard Shaw"},
		{"Death is not the greatest loss in life. The greatest loss is what dies inside us while we live.", "Norman Cousins"},
		{"Life's most persistent and urgent question is, 'What are you doing for others?'", "Martin Luther King, Jr."},
		{"You cannot do kindness too soon, for you never know how soon it will be too late.", "Ralph Waldo Emerson"},
		{"Keep your face always toward the sunshine and shadows will fall behind you.", "Walt Whitman"},
	},
	"Life": {
		{"Life is divided into the horrible and the miserable.", "Woody Allen"},
		{"A stumble may prevent a fall.", "Thomas Fuller"},
		{"Nothing is an obstacle unless you say it is.", "Wally Amos"},
		{"We are what we repeatedly do. Excellence, then, is not an act, but a habit.", "Aristotle"},
		{"Life is what happens when you're busy making other plans.", "John Lennon"},
	},
	"Motivation": {
		{"The only way to do great work is to love what you do.", "Steve Jobs"},
		{"Believe you can and you're halfway there.", "Theodore Roosevelt"},
		{"Don't watch the clock; do what it does. Keep going.", "Sam Levenson"},
		{"The future belongs to those who believe in the beauty of their dreams.", "Eleanor Roosevelt"},
		{"It does not matter how slowly you go as long as you do not stop.", "Confucius"},
	},
	"Love": {
		{"Love is composed of a single soul inhabiting two bodies.", "Aristotle"},
		{"The best thing to hold onto in life is each other.", "Audrey Hepburn"},
		{"Love recognizes no barriers.", "Maya Angelou"},
		{"Where there is love there is life.", "Mahatma Gandhi"},
		{"Love is not only something you feel, it is something you do.", "David Wilkerson"},
	},
}
