////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/caffeinepub/vibechat/timeline"
	"github.com/charmbracelet/lipgloss"
)

const (
	ownBubbleIndent = 24
	maxBubbleWidth  = 96
)

var ownBubbleStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("63")).
	Padding(0, 1).
	MarginLeft(ownBubbleIndent)

var otherBubbleStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1)

var hintStyle = lipgloss.NewStyle().Faint(true)

// renderStyled draws the view as bordered bubbles for the watch screen. Own
// bubbles are pushed to the right.
func renderStyled(w io.Writer, v timeline.View) error {
	if v.Loading || len(v.Bubbles) == 0 {
		var b strings.Builder
		if err := timeline.Render(&b, v); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, hintStyle.Render(strings.TrimSpace(b.String())))
		return err
	}

	blocks := make([]string, 0, len(v.Bubbles)+1)
	for _, b := range v.Bubbles {
		style := otherBubbleStyle
		if b.Own {
			style = ownBubbleStyle
		}
		blocks = append(blocks,
			style.MaxWidth(maxBubbleWidth).Render(strings.Join(b.Lines(), "\n")))
	}
	if v.Err != nil {
		blocks = append(blocks, hintStyle.Render(v.Err.Error()))
	}
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, blocks...))
	return err
}
