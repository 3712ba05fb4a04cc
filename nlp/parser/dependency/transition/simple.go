package transition

import (
	"fmt"
	"strconv"
	"strings"

	. "github.com/danielgalbraith/DepTrain/alg"
	. "github.com/danielgalbraith/DepTrain/alg/transition"
	nlp "github.com/danielgalbraith/DepTrain/nlp/types"
	"github.com/danielgalbraith/DepTrain/util"
)

const MAX_DISTANCE = 10

// SimpleConfiguration is an arc-eager parser state with the root placed at
// the end of the queue.
type SimpleConfiguration struct {
	InternalStack Stack
	InternalQueue Queue
	InternalArcs  ArcSet
	Nodes         []*TokenNode
	Last          Transition
}

var _ Configuration = &SimpleConfiguration{}
var _ nlp.LabeledDependencyGraph = &SimpleConfiguration{}

func NewSimpleConfiguration() *SimpleConfiguration {
	return new(SimpleConfiguration)
}

// Init accepts an nlp.Sentence (or a plain []string of tokens): the stack
// starts empty and the queue holds tokens 1..n followed by the root.
func (c *SimpleConfiguration) Init(abstractSentence interface{}) {
	var tokens []string
	switch sent := abstractSentence.(type) {
	case nlp.Sentence:
		tokens = sent.Tokens()
	case []string:
		tokens = sent
	default:
		panic(fmt.Sprintf("can't initialize configuration from %T", abstractSentence))
	}
	sentLength := len(tokens)
	c.Nodes = make([]*TokenNode, 0, sentLength+1)
	c.Nodes = append(c.Nodes, RootNode)
	for i, token := range tokens {
		c.Nodes = append(c.Nodes, NewTokenNode(i+1, token))
	}

	c.InternalStack = NewStackArray(sentLength + 1)
	c.InternalQueue = NewQueueSlice(sentLength + 1)
	c.InternalArcs = NewArcSetSimple(sentLength + 1)
	for i := 1; i <= sentLength; i++ {
		c.Queue().Enqueue(i)
	}
	c.Queue().Enqueue(0)
	c.Last = IDLE
}

func (c *SimpleConfiguration) Terminal() bool {
	if c.Queue().Size() != 0 || c.Stack().Size() != 1 {
		return false
	}
	top, _ := c.Stack().Peek()
	return top == 0
}

func (c *SimpleConfiguration) Stack() Stack {
	return c.InternalStack
}

func (c *SimpleConfiguration) Queue() Queue {
	return c.InternalQueue
}

func (c *SimpleConfiguration) Arcs() ArcSet {
	return c.InternalArcs
}

// Copy of an uninitialized configuration is itself uninitialized.
func (c *SimpleConfiguration) Copy() Configuration {
	newConf := &SimpleConfiguration{Nodes: c.Nodes, Last: c.Last}
	if c.InternalStack != nil {
		newConf.InternalStack = c.InternalStack.Copy()
	}
	if c.InternalQueue != nil {
		newConf.InternalQueue = c.InternalQueue.Copy()
	}
	if c.InternalArcs != nil {
		newConf.InternalArcs = c.InternalArcs.Copy()
	}
	return newConf
}

func (c *SimpleConfiguration) Equal(other *SimpleConfiguration) bool {
	return c.Last == other.Last &&
		len(c.Nodes) == len(other.Nodes) &&
		c.Stack().Equal(other.Stack()) &&
		c.Queue().Equal(other.Queue()) &&
		c.Arcs().Equal(other.Arcs())
}

func (c *SimpleConfiguration) AddArc(arc *BasicDepArc) {
	c.InternalArcs.Add(arc)
}

func (c *SimpleConfiguration) SetLastTransition(t Transition) {
	c.Last = t
}

func (c *SimpleConfiguration) GetLastTransition() Transition {
	return c.Last
}

// Len is the number of nodes, root included.
func (c *SimpleConfiguration) Len() int {
	return len(c.Nodes)
}

// position places the root after the last token.
func (c *SimpleConfiguration) position(nodeID int) int {
	if nodeID == 0 {
		return len(c.Nodes)
	}
	return nodeID
}

// Address resolves S<d>/N<d> optionally followed by h (head), l (leftmost
// modifier) or r (rightmost modifier), applied left to right.
func (c *SimpleConfiguration) Address(location []byte) (int, bool) {
	if len(location) < 2 {
		return 0, false
	}
	offset := int(location[1] - '0')
	var (
		nodeID int
		exists bool
	)
	switch location[0] {
	case 'S':
		nodeID, exists = c.Stack().Index(offset)
	case 'N':
		nodeID, exists = c.Queue().Index(offset)
	}
	if !exists {
		return 0, false
	}
	for _, modifier := range location[2:] {
		switch modifier {
		case 'h':
			arc, hasHead := c.Arcs().HeadOf(nodeID)
			if !hasHead {
				return 0, false
			}
			nodeID = arc.GetHead()
		case 'l', 'r':
			mods := c.sideModifiers(nodeID, modifier == 'l')
			if len(mods) == 0 {
				return 0, false
			}
			if modifier == 'l' {
				nodeID = mods[0]
			} else {
				nodeID = mods[len(mods)-1]
			}
		default:
			return 0, false
		}
	}
	return nodeID, true
}

// sideModifiers returns the modifiers of nodeID to its left or right, in
// surface order.
func (c *SimpleConfiguration) sideModifiers(nodeID int, left bool) []int {
	var retval []int
	pos := c.position(nodeID)
	for _, mod := range c.Arcs().Modifiers(nodeID) {
		if (c.position(mod) < pos) == left {
			retval = append(retval, mod)
		}
	}
	return retval
}

func (c *SimpleConfiguration) Attribute(nodeID int, attribute []byte) (string, bool) {
	if nodeID < 0 || nodeID >= len(c.Nodes) {
		return "", false
	}
	node := c.Nodes[nodeID]
	switch string(attribute) {
	case "w":
		return node.Form, true
	case "n":
		return node.Norm, true
	case "x":
		return node.Shape, true
	case "p":
		return node.Prefix, true
	case "s":
		return node.Suffix, true
	case "u":
		return strconv.FormatBool(node.Punct), true
	case "l":
		arc, hasHead := c.Arcs().HeadOf(nodeID)
		if !hasHead {
			return "_", true
		}
		return string(arc.GetRelation()), true
	case "d":
		front, exists := c.Queue().Peek()
		if !exists {
			return "", false
		}
		distance := util.Min(util.AbsInt(c.position(front)-c.position(nodeID)), MAX_DISTANCE)
		return strconv.Itoa(distance), true
	case "vl":
		return strconv.Itoa(len(c.sideModifiers(nodeID, true))), true
	case "vr":
		return strconv.Itoa(len(c.sideModifiers(nodeID, false))), true
	}
	return "", false
}

// GetLabeledArc returns the arc into modifier, if assigned.
func (c *SimpleConfiguration) GetLabeledArc(modifier int) nlp.LabeledDepArc {
	arc, exists := c.Arcs().HeadOf(modifier)
	if !exists {
		return nil
	}
	return arc
}

func (c *SimpleConfiguration) NumberOfNodes() int {
	return len(c.Nodes)
}

func (c *SimpleConfiguration) Sentence() nlp.Sentence {
	sent := make(nlp.BasicSentence, 0, len(c.Nodes)-1)
	for _, node := range c.Nodes[1:] {
		sent = append(sent, node.Form)
	}
	return sent
}

// Heads returns the assigned head of each token 1..n (nlp.NO_HEAD if none)
// and its label.
func (c *SimpleConfiguration) Heads() ([]int, []nlp.DepRel) {
	heads := make([]int, len(c.Nodes)-1)
	labels := make([]nlp.DepRel, len(c.Nodes)-1)
	for i := range heads {
		arc, exists := c.Arcs().HeadOf(i + 1)
		if !exists {
			heads[i] = nlp.NO_HEAD
			continue
		}
		heads[i], labels[i] = arc.GetHead(), arc.GetRelation()
	}
	return heads, labels
}

// OUTPUT FUNCTIONS

func (c *SimpleConfiguration) String() string {
	return fmt.Sprintf("([%s],\t[%s],\tA%d)", c.StringStack(), c.StringQueue(), c.Arcs().Size())
}

func (c *SimpleConfiguration) StringStack() string {
	stackSize := c.Stack().Size()
	switch {
	case stackSize > 0 && stackSize <= 3:
		stackStrings := make([]string, 0, 3)
		for i := stackSize - 1; i >= 0; i-- {
			atI, _ := c.Stack().Index(i)
			stackStrings = append(stackStrings, c.Nodes[atI].Form)
		}
		return strings.Join(stackStrings, ",")
	case stackSize > 3:
		headID, _ := c.Stack().Index(0)
		tailID, _ := c.Stack().Index(stackSize - 1)
		return strings.Join([]string{c.Nodes[tailID].Form, "...", c.Nodes[headID].Form}, ",")
	default:
		return ""
	}
}

func (c *SimpleConfiguration) StringQueue() string {
	queueSize := c.Queue().Size()
	switch {
	case queueSize > 0 && queueSize <= 3:
		queueStrings := make([]string, 0, 3)
		for i := 0; i < queueSize; i++ {
			atI, _ := c.Queue().Index(i)
			queueStrings = append(queueStrings, c.Nodes[atI].Form)
		}
		return strings.Join(queueStrings, ",")
	case queueSize > 3:
		headID, _ := c.Queue().Index(0)
		tailID, _ := c.Queue().Index(queueSize - 1)
		return strings.Join([]string{c.Nodes[headID].Form, "...", c.Nodes[tailID].Form}, ",")
	default:
		return ""
	}
}
