package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zucenko/mazerace/model"
)

var (
	ErrMazeNotSquare   = errors.New("maze is not square")
	ErrMazeTooSmall    = errors.New("maze is too small")
	ErrCornerBlocked   = errors.New("start corner is a wall")
	ErrUnknownMazeRune = errors.New("unknown maze character")
)

const minSize = 3

func Load(path string) (*model.Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return read(file)
}

// read parses a text maze, one line per row: '#' or '1' is a wall, '.', '0'
// or ' ' is open floor.
func read(reader io.Reader) (*model.Grid, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanLines)
	var b strings.Builder
	rows := 0
	cols := -1
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" && cols == -1 {
			continue
		}
		if cols == -1 {
			cols = len(line)
		} else if len(line) != cols {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", rows, len(line), cols, ErrMazeNotSquare)
		}
		for i, char := range line {
			switch char {
			case '#', '1':
				b.WriteByte('1')
			case '.', '0', ' ':
				b.WriteByte('0')
			default:
				return nil, fmt.Errorf("row %d col %d %q: %w", rows, i, char, ErrUnknownMazeRune)
			}
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if rows != cols {
		return nil, fmt.Errorf("%d rows of %d: %w", rows, cols, ErrMazeNotSquare)
	}
	if rows < minSize {
		return nil, ErrMazeTooSmall
	}
	g, err := model.DecodeGrid(b.String(), rows)
	if err != nil {
		return nil, err
	}
	for _, p := range startPositions(rows) {
		if c, _ := g.Get(p.X, p.Y); c == model.Wall {
			return nil, fmt.Errorf("%s: %w", p, ErrCornerBlocked)
		}
	}
	return g, nil
}

func startPositions(n int) map[model.Color]model.Position {
	return map[model.Color]model.Position{
		model.Red:  {X: 0, Y: 0},
		model.Blue: {X: n - 1, Y: n - 1},
	}
}
