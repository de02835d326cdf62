package pattern

import "testing"
import "github.com/stretchr/testify/assert"

func TestParse(t *testing.T) {
	x := assert.New(t)
	p, err := Parse("3;0-1,1-2")
	x.Nil(err)
	x.Equal(3, p.NumberOfVertices())
	x.Equal([]Edge{{SrcPos: 0, TargPos: 1}, {SrcPos: 1, TargPos: 2}}, p.Edges())
	x.Equal(2, NumberOfEdges(p))

	p, err = Parse(" 2; 0-1:7 ")
	x.Nil(err)
	x.Equal([]Edge{{SrcPos: 0, TargPos: 1, Label: 7}}, p.Edges())
}

func TestParseRejectsMalformedPatterns(t *testing.T) {
	x := assert.New(t)
	for _, s := range []string{
		"",
		"3",
		"x;0-1",
		"0;0-1",
		"2;",
		"2;0",
		"2;0-x",
		"2;0-1:x",
		"2;0-2",
		"2;-1-0",
	} {
		_, err := Parse(s)
		x.NotNil(err, "%q must fail to parse", s)
	}
}

func TestLabelIsDeterministicAndDiscriminating(t *testing.T) {
	x := assert.New(t)
	a, err := Parse("3;0-1,1-2")
	x.Nil(err)
	b, err := Parse("3;0-1,1-2")
	x.Nil(err)
	x.Equal(a.Label(), b.Label())

	c, err := Parse("3;0-1,0-2")
	x.Nil(err)
	x.NotEqual(a.Label(), c.Label())
	d, err := Parse("2;0-1:9")
	x.Nil(err)
	x.NotEqual(a.Label(), d.Label())
}

func TestString(t *testing.T) {
	x := assert.New(t)
	p, err := Parse("3;0-1,1-2:5")
	x.Nil(err)
	x.Equal("{2:3}[0-1:0][1-2:5]", p.String())
}
