package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/driveclone/backend/internal/cli/api"
)

// JSON prints v as indented JSON.
func JSON(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// FileTable prints files as a table. Trashed listings show when each file
// was moved to Trash instead of its upload time.
func FileTable(w io.Writer, files []api.File, trashed bool) {
	if len(files) == 0 {
		if trashed {
			fmt.Fprintln(w, "Trash is empty.")
		} else {
			fmt.Fprintln(w, "No files found.")
		}
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if trashed {
		fmt.Fprintln(tw, "ID\tNAME\tSIZE\tTYPE\tTRASHED")
	} else {
		fmt.Fprintln(tw, "ID\tNAME\tSIZE\tTYPE\tSHARED\tUPLOADED")
	}

	for _, f := range files {
		if trashed {
			when := "-"
			if f.TrashedAt != nil {
				when = RelativeTime(*f.TrashedAt)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Filename, FormatSize(f.Size), shortMIME(f.Type), when)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", f.ID, f.Filename, FormatSize(f.Size), shortMIME(f.Type), shareState(f), RelativeTime(f.CreatedAt))
	}
	tw.Flush()
}

func shareState(f api.File) string {
	grants := len(f.Permissions.Viewer) + len(f.Permissions.Editor)
	switch {
	case f.ShareToken != nil && f.IsPublic:
		if grants > 0 {
			return fmt.Sprintf("link+%d", grants)
		}
		return "link"
	case grants > 0:
		return fmt.Sprintf("%d", grants)
	default:
		return "-"
	}
}

// UserInfo prints the local account mirror.
func UserInfo(w io.Writer, u api.User) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	if u.Name != nil && *u.Name != "" {
		fmt.Fprintf(tw, "Name:\t%s\n", *u.Name)
	}
	fmt.Fprintf(tw, "ID:\t%s\n", u.ID)
	tw.Flush()
}

// Permissions prints both grant lists.
func Permissions(w io.Writer, p api.Permissions) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Viewers:\t%s\n", joinOrDash(p.Viewer))
	fmt.Fprintf(tw, "Editors:\t%s\n", joinOrDash(p.Editor))
	tw.Flush()
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

// FormatSize converts bytes to a human-readable string.
func FormatSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// RelativeTime formats a timestamp relative to now (e.g. "2h ago", "3d ago").
func RelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// shortMIME turns "application/pdf" into "pdf".
func shortMIME(mime string) string {
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	parts := strings.Split(mime, "/")
	if len(parts) == 2 {
		s := parts[1]
		if idx := strings.LastIndex(s, "."); idx >= 0 {
			s = s[idx+1:]
		}
		return s
	}
	return mime
}
