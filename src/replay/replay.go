// Package replay drives a session from a YAML script of input events, for
// headless annotation and for tests.
//
// A script looks like:
//
//	scale: 1
//	events:
//	  - tool: arrow
//	  - drag: {from: [10, 10], to: [120, 80]}
//	  - color: blue
//	  - tool: text
//	  - click: [40, 40]
//	  - type: "hello"
//	  - done
//	  - done
package replay

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"screen-annotate/src/geometry"
	"screen-annotate/src/messages"
	"screen-annotate/src/session"
	"screen-annotate/src/shape"
)

type Script struct {
	// Scale overrides the display scale factor when > 0.
	Scale  float64 `yaml:"scale"`
	Events []Step  `yaml:"events"`
}

// Step is one script entry. Compound entries (drag, click) expand into
// several events.
type Step struct {
	Messages []messages.Message
}

func Load(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return &s, nil
		}
		return nil, fmt.Errorf("failed to parse replay script: %w", err)
	}
	return &s, nil
}

func LoadFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay script: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Messages flattens the script into the event stream it describes.
func (s *Script) Messages() []messages.Message {
	var out []messages.Message
	for _, st := range s.Events {
		out = append(out, st.Messages...)
	}
	return out
}

// Play applies msgs to sess in order and stops at the first close request.
// It reports whether the session asked to close.
func Play(sess *session.Session, msgs []messages.Message) bool {
	for i, m := range msgs {
		if sess.Apply(m) == session.RequestClose {
			if rest := len(msgs) - i - 1; rest > 0 {
				log.Printf("Replay: session closed with %d events left", rest)
			}
			return true
		}
	}
	return false
}

var simple = map[string]messages.Message{
	"press":          messages.PointerPressed{},
	"release":        messages.PointerReleased{},
	"done":           messages.Done{},
	"cancel":         messages.Cancel{},
	"undo":           messages.Undo{},
	"erase":          messages.EraseText{},
	"toggle-toolbar": messages.ToggleToolbar{},
}

func (st *Step) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		m, ok := simple[strings.ToLower(n.Value)]
		if !ok {
			return fmt.Errorf("line %d: unknown event %q", n.Line, n.Value)
		}
		st.Messages = []messages.Message{m}
		return nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return fmt.Errorf("line %d: each event must have exactly one key", n.Line)
		}
		msgs, err := decodeKeyed(n.Content[0].Value, n.Content[1])
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		st.Messages = msgs
		return nil
	default:
		return fmt.Errorf("line %d: event must be a name or a single-key map", n.Line)
	}
}

type dragArgs struct {
	From point `yaml:"from"`
	To   point `yaml:"to"`
}

type point geometry.Point

func (p *point) UnmarshalYAML(n *yaml.Node) error {
	var xy []float64
	if err := n.Decode(&xy); err != nil || len(xy) != 2 {
		return fmt.Errorf("line %d: point must be [x, y]", n.Line)
	}
	*p = point{X: xy[0], Y: xy[1]}
	return nil
}

func decodeKeyed(key string, v *yaml.Node) ([]messages.Message, error) {
	switch strings.ToLower(key) {
	case "move":
		var p point
		if err := v.Decode(&p); err != nil {
			return nil, err
		}
		return []messages.Message{messages.PointerMoved{Position: geometry.Point(p)}}, nil
	case "click":
		var p point
		if err := v.Decode(&p); err != nil {
			return nil, err
		}
		return []messages.Message{
			messages.PointerMoved{Position: geometry.Point(p)},
			messages.PointerPressed{},
			messages.PointerReleased{},
		}, nil
	case "drag":
		var d dragArgs
		if err := v.Decode(&d); err != nil {
			return nil, err
		}
		return []messages.Message{
			messages.PointerMoved{Position: geometry.Point(d.From)},
			messages.PointerPressed{},
			messages.PointerMoved{Position: geometry.Point(d.To)},
			messages.PointerReleased{},
		}, nil
	case "tool":
		t, ok := shape.ToolByName(v.Value)
		if !ok {
			return nil, fmt.Errorf("unknown tool %q", v.Value)
		}
		return []messages.Message{messages.ChangeTool{Tool: t}}, nil
	case "color":
		c, ok := shape.ColorByName(v.Value)
		if !ok {
			return nil, fmt.Errorf("unknown color %q", v.Value)
		}
		return []messages.Message{messages.ChangeColor{Color: c}}, nil
	case "size":
		var n int
		if err := v.Decode(&n); err != nil {
			return nil, fmt.Errorf("size must be an integer")
		}
		return []messages.Message{messages.ChangeSize{Size: n}}, nil
	case "text":
		return []messages.Message{messages.UpdateText{Text: v.Value}}, nil
	case "type":
		return []messages.Message{messages.AppendText{Text: v.Value}}, nil
	default:
		return nil, fmt.Errorf("unknown event %q", key)
	}
}
