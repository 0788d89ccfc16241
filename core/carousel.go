package core

import (
	"errors"
	"fmt"
)

// Carousel tracks the visible slide of a fixed, ordered set of slides.
// The index always stays in [0, slides).
type Carousel struct {
	slides int
	index  int
}

func NewCarousel(slides int) (*Carousel, error) {
	if slides <= 0 {
		return nil, errors.New("carousel needs at least one slide")
	}
	return &Carousel{slides: slides}, nil
}

func (c *Carousel) Len() int   { return c.slides }
func (c *Carousel) Index() int { return c.index }

// Next advances one slide, wrapping from the last to the first.
func (c *Carousel) Next() int {
	return c.MoveTo(c.index + 1)
}

// Prev goes back one slide, wrapping from the first to the last.
func (c *Carousel) Prev() int {
	return c.MoveTo(c.index - 1)
}

// MoveTo jumps to i, reduced modulo the slide count (negative i counts from the end).
func (c *Carousel) MoveTo(i int) int {
	c.index = ((i % c.slides) + c.slides) % c.slides
	return c.index
}

// Transform is the CSS transform that shows the current slide.
func (c *Carousel) Transform() string {
	return fmt.Sprintf("translateX(-%d%%)", c.index*100)
}
