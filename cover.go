package douban

import (
	"context"
	"log/slog"

	"github.com/bookmeta/douban/internal/catalog"
	"github.com/bookmeta/douban/metadata"
)

// CoverImage is a fetched cover: the image bytes plus the catalog URL they
// came from. Data is the original download unless Config.MaxCoverWidth
// forced a resize, in which case it is a re-encoded JPEG.
type CoverImage struct {
	Data []byte
	URL  string
}

// Cover resolves and downloads the cover image for the book the identifiers
// point at. With a douban id it goes straight to the subject page; with only
// an ISBN it runs a lookup first, the way a host without a stored subject id
// has to. Books the catalog shows with its placeholder image return
// metadata.ErrNoCover.
func (s *Source) Cover(ctx context.Context, identifiers map[string]string) (*CoverImage, error) {
	coverURL, err := s.coverURL(ctx, identifiers)
	if err != nil {
		return nil, err
	}
	if coverURL == "" {
		return nil, metadata.ErrNoCover
	}
	if err := ctx.Err(); err != nil {
		return nil, &metadata.LookupError{Kind: metadata.FailTimeout, Err: err}
	}

	data, err := s.client.FetchImage(ctx, coverURL)
	if err != nil {
		return nil, err
	}

	if s.cfg.MaxCoverWidth > 0 {
		shrunk, err := catalog.ShrinkImage(data, s.cfg.MaxCoverWidth)
		if err != nil {
			slog.Debug("cover shrink failed, keeping original", "url", coverURL, "error", err)
		} else {
			data = shrunk
		}
	}

	return &CoverImage{Data: data, URL: coverURL}, nil
}

func (s *Source) coverURL(ctx context.Context, identifiers map[string]string) (string, error) {
	known := metadata.KnownIdentifiers(metadata.Query{Identifiers: identifiers})

	if subject := known[metadata.IdentifierDouban]; subject != "" {
		cand, err := s.client.Subject(ctx, subject)
		if err != nil {
			return "", err
		}
		return cand.CoverURL, nil
	}

	res, err := s.Identify(ctx, metadata.Query{Identifiers: identifiers, MaxResults: 1})
	if err != nil {
		return "", err
	}
	for _, rec := range res.Records {
		if rec.CoverURL != "" {
			return rec.CoverURL, nil
		}
	}
	return "", nil
}
