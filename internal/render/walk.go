package render

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	apphistory "github.com/zjrosen/lineage/internal/history/application"
	domain "github.com/zjrosen/lineage/internal/history/domain"
)

// row is one line of the text format, shared by walks and recorded runs.
type row struct {
	Hash       string
	AuthorTime time.Time
	Replayed   bool
	OutOfOrder bool
	Author     string
	Subject    string
}

func stepRows(steps []domain.Step) []row {
	rows := make([]row, len(steps))
	for i, s := range steps {
		rows[i] = row{
			Hash:       s.Commit.Hash,
			AuthorTime: s.Commit.Author.When,
			Replayed:   s.Replayed,
			OutOfOrder: s.OutOfOrder,
			Author:     s.Commit.Author.Name,
			Subject:    s.Commit.Subject(),
		}
	}
	return rows
}

// Walk prints one tab-separated line per step:
//
//	<hash> <author time> <replayed marker> <out-of-order marker> <author> <subject>
//
// Empty markers leave an empty column.
func (p *Printer) Walk(steps []domain.Step) error {
	return p.rows(stepRows(steps))
}

func (p *Printer) rows(rows []row) error {
	width := 0
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r.Author))
	}
	width = min(width, maxAuthorWidth)

	for _, r := range rows {
		cols := []string{
			p.styles.hash.Render(r.Hash),
			r.AuthorTime.UTC().Format(TimeLayout),
			"",
			"",
			p.styles.author.Render(runewidth.FillRight(runewidth.Truncate(r.Author, width, "…"), width)),
			r.Subject,
		}
		if r.Replayed {
			cols[2] = p.styles.replayed.Render(ReplayedMarker)
		}
		if r.OutOfOrder {
			cols[3] = p.styles.outOfOrder.Render(OutOfOrderMarker)
		}
		if err := p.println(strings.Join(cols, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// yamlWalk is the yaml document for one walk.
type yamlWalk struct {
	Repo   string     `yaml:"repo"`
	Source string     `yaml:"source"`
	Start  string     `yaml:"start"`
	Loaded int        `yaml:"loaded"`
	Steps  []yamlStep `yaml:"steps"`
}

type yamlStep struct {
	Position      int       `yaml:"position"`
	Hash          string    `yaml:"hash"`
	Author        string    `yaml:"author,omitempty"`
	AuthorTime    time.Time `yaml:"author_time"`
	CommitterTime time.Time `yaml:"committer_time"`
	Replayed      bool      `yaml:"replayed,omitempty"`
	OutOfOrder    bool      `yaml:"out_of_order,omitempty"`
	Subject       string    `yaml:"subject"`
}

// WalkYAML prints result as a yaml document.
func (p *Printer) WalkYAML(result apphistory.Result) error {
	doc := yamlWalk{
		Repo:   result.RepoDir,
		Source: string(result.Source),
		Start:  result.Start.Hash,
		Loaded: result.Total,
		Steps:  make([]yamlStep, len(result.Steps)),
	}
	for i, s := range result.Steps {
		doc.Steps[i] = yamlStep{
			Position:      s.Position,
			Hash:          s.Commit.Hash,
			Author:        s.Commit.Author.Name,
			AuthorTime:    s.Commit.Author.When.UTC(),
			CommitterTime: s.Commit.Committer.When.UTC(),
			Replayed:      s.Replayed,
			OutOfOrder:    s.OutOfOrder,
			Subject:       s.Commit.Subject(),
		}
	}
	return p.yaml(doc)
}

func (p *Printer) yaml(doc any) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// Divergence prints a unified-diff style report: "-" lines are where the walk
// put a commit, "+" lines where commit time would have.
func (p *Printer) Divergence(lines []apphistory.DiffLine) error {
	if !apphistory.HasDivergence(lines) {
		return p.println(p.styles.faint.Render("integration order matches authoring order"))
	}
	if err := p.println(p.styles.delete.Render("--- walk order")); err != nil {
		return err
	}
	if err := p.println(p.styles.insert.Render("+++ committer order")); err != nil {
		return err
	}
	for _, l := range lines {
		text := l.Kind.String() + " " + l.Text
		switch l.Kind {
		case apphistory.DiffDelete:
			text = p.styles.delete.Render(text)
		case apphistory.DiffInsert:
			text = p.styles.insert.Render(text)
		}
		if err := p.println(text); err != nil {
			return err
		}
	}
	return nil
}
