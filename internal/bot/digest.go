package bot

import (
	"fmt"
	"strings"

	"musicshelf/internal/domain"
	"musicshelf/internal/storage"
)

// BuildDigest renders the weekly recap message: one section per user, links
// listed in the order they were shared.
func BuildDigest(grouped []storage.UserLinks) string {
	if len(grouped) == 0 {
		return "Nothing was shared in this chat during the last week."
	}

	var sb strings.Builder
	sb.WriteString("Music shared during the last week:\n")

	for _, ul := range grouped {
		sb.WriteString("\n")
		sb.WriteString(displayName(ul.User))
		sb.WriteString(":\n")
		for _, link := range ul.Links {
			fmt.Fprintf(&sb, "  [%s] %s\n", domain.LinkType(link.LinkType), link.Link)
		}
	}

	return sb.String()
}

// FormatLinkReply renders the confirmation sent after a link is resolved
// and saved. Fields absent from the resolved metadata are left out.
func FormatLinkReply(info domain.LinkInfo) string {
	var subject string
	switch info.Type {
	case domain.LinkTypeArtist:
		subject = info.Artist
	case domain.LinkTypeAlbum:
		subject = fmt.Sprintf("%s - %s", info.Artist, info.Album)
	case domain.LinkTypeTrack:
		subject = fmt.Sprintf("%s - %s", info.Artist, info.Track)
	}

	reply := fmt.Sprintf("Saved %s: %s", info.Type, subject)
	if info.Genre != "" {
		reply += fmt.Sprintf(" (%s)", info.Genre)
	}
	return reply
}

func displayName(u storage.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if u.Username != "" {
		if name == "" {
			return "@" + u.Username
		}
		return fmt.Sprintf("%s (@%s)", name, u.Username)
	}
	if name == "" {
		return u.ID
	}
	return name
}
