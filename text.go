package main

// AboutMe is the about section of the public site, one entry per paragraph.
var AboutMe = []string{
	`I love building software that's both useful and fun, and I'm always curious about how
	things work behind the scenes. Most of my projects start with a simple idea and turn
	into a chance to learn something new.`,

	`The experience and projects below come straight from my portfolio's data store and are
	kept up to date from a small admin console.`,
}
