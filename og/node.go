package og

// Kind tells a rasterizer how to draw a Node.
type Kind string

const (
	KindBox   Kind = "box"
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Direction is the main axis along which a box lays out its children.
type Direction string

const (
	Row    Direction = "row"
	Column Direction = "column"
)

// Justify distributes children along the main axis.
type Justify string

const (
	JustifyStart        Justify = "start"
	JustifyCenter       Justify = "center"
	JustifyEnd          Justify = "end"
	JustifySpaceBetween Justify = "space-between"
)

// Align positions children on the cross axis. The zero value stretches them.
type Align string

const (
	AlignStretch Align = ""
	AlignStart   Align = "start"
	AlignCenter  Align = "center"
	AlignEnd     Align = "end"
)

// GradientKind selects linear or radial interpolation.
type GradientKind string

const (
	Linear GradientKind = "linear"
	Radial GradientKind = "radial"
)

// Gradient is a two-stop colour ramp. Angle follows CSS: 0 points up,
// 90 points right, 135 runs from the top-left to the bottom-right corner.
type Gradient struct {
	Kind  GradientKind `json:"kind"`
	Angle float64      `json:"angle,omitempty"`
	From  string       `json:"from"`
	To    string       `json:"to"`
}

// Edges holds one value per side.
type Edges struct {
	Top    int `json:"top,omitempty"`
	Right  int `json:"right,omitempty"`
	Bottom int `json:"bottom,omitempty"`
	Left   int `json:"left,omitempty"`
}

// All returns Edges with v on every side.
func All(v int) Edges { return Edges{Top: v, Right: v, Bottom: v, Left: v} }

// Symmetric returns Edges with v on top and bottom and h on left and right.
func Symmetric(v, h int) Edges { return Edges{Top: v, Right: h, Bottom: v, Left: h} }

// Horizontal is the sum of the left and right edges.
func (e Edges) Horizontal() int { return e.Left + e.Right }

// Vertical is the sum of the top and bottom edges.
func (e Edges) Vertical() int { return e.Top + e.Bottom }

// Border is a solid border. Width is per side so a box can drop one edge.
type Border struct {
	Width Edges  `json:"width"`
	Color string `json:"color,omitempty"`
}

// Node is one element of a card layout: a flex box, a text leaf or an image
// leaf. A zero Width or Height means the size comes from the content or, on
// the cross axis, from the parent's Align.
type Node struct {
	ID   string `json:"id,omitempty"`
	Kind Kind   `json:"kind"`

	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	Grow      int       `json:"grow,omitempty"`
	Padding   Edges     `json:"padding"`
	Gap       int       `json:"gap,omitempty"`
	Direction Direction `json:"direction,omitempty"`
	Justify   Justify   `json:"justify,omitempty"`
	Align     Align     `json:"align,omitempty"`

	Background string    `json:"background,omitempty"`
	Gradient   *Gradient `json:"gradient,omitempty"`
	Border     Border    `json:"border"`
	Radius     int       `json:"radius,omitempty"`

	Text       string  `json:"text,omitempty"`
	FontSize   int     `json:"fontSize,omitempty"`
	FontWeight int     `json:"fontWeight,omitempty"`
	Color      string  `json:"color,omitempty"`
	LineHeight float64 `json:"lineHeight,omitempty"`

	Src string `json:"src,omitempty"`

	Children []*Node `json:"children,omitempty"`
}

// Find returns the first node in the subtree rooted at n whose ID is id.
func (n *Node) Find(id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Walk calls fn for n and every descendant in depth-first order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
