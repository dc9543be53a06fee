package infrastructure

import (
	"strconv"
	"strings"
	"time"

	domain "github.com/zjrosen/lineage/internal/history/domain"
	"github.com/zjrosen/lineage/internal/log"
)

// DefaultDelimiter separates commits in rev-list output. It only has to be
// unlikely to appear in a commit message.
const DefaultDelimiter = "#+-=+-=+-=+-=+-=+-=+-=+-=+-=+-=+-=+-=+-=+-=+-=+-=+-=+-=+-=#"

const (
	// commitHeaderPrefix starts the line rev-list prints before each
	// formatted commit.
	commitHeaderPrefix = "commit "

	// minChunkLines is the header plus the seven fixed fields. The message
	// may be empty.
	minChunkLines = 8
)

// revListFields are the placeholders for the fixed lines of each chunk,
// in order.
var revListFields = []string{
	"%P",  // parent hashes
	"%an", // author name
	"%ae", // author email
	"%at", // author time, epoch seconds
	"%cn", // committer name
	"%ce", // committer email
	"%ct", // committer time, epoch seconds
	"%B",  // raw message
}

// RevListFormat returns the --format value whose output ParseRevList reads.
// The delimiter is escaped so git prints it literally.
func RevListFormat(delimiter string) string {
	escaped := strings.ReplaceAll(delimiter, "%", "%%")
	return strings.Join(append(append([]string{}, revListFields...), escaped), "%n")
}

// ParseRevList converts `git rev-list --format=RevListFormat(delimiter)`
// output into commits, in output order. Chunks that are too short or carry
// unparsable timestamps are skipped.
func ParseRevList(output, delimiter string) []domain.Commit {
	chunks := strings.Split(output, delimiter)
	commits := make([]domain.Commit, 0, len(chunks))
	for i, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		c, ok := parseChunk(chunk)
		if !ok {
			log.Debug(log.CatGit, "Skipping malformed rev-list chunk", "index", i, "lines", strings.Count(chunk, "\n")+1)
			continue
		}
		commits = append(commits, c)
	}
	return commits
}

func parseChunk(chunk string) (domain.Commit, bool) {
	lines := strings.Split(chunk, "\n")
	if len(lines) < minChunkLines {
		return domain.Commit{}, false
	}

	hash := strings.TrimSpace(strings.TrimPrefix(lines[0], commitHeaderPrefix))
	if hash == "" {
		return domain.Commit{}, false
	}
	authorTime, err := parseEpoch(lines[4])
	if err != nil {
		return domain.Commit{}, false
	}
	committerTime, err := parseEpoch(lines[7])
	if err != nil {
		return domain.Commit{}, false
	}

	return domain.Commit{
		Hash:    hash,
		Parents: strings.Fields(lines[1]),
		Message: strings.Join(lines[minChunkLines:], "\n"),
		Author: domain.Signature{
			Name:  lines[2],
			Email: lines[3],
			When:  authorTime,
		},
		Committer: domain.Signature{
			Name:  lines[5],
			Email: lines[6],
			When:  committerTime,
		},
	}, true
}

func parseEpoch(s string) (time.Time, error) {
	secs, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0).UTC(), nil
}
