package container

import "github.com/sigmaraw/x3fcore/internal/camf"

// Parsed is the result of ContainerParser: a validated header plus the
// fully-walked directory. No section payload has been read yet — that is
// SectionLoader's job, operating on the original file bytes plus an Entry
// from this structure. Loaded payloads are memoized here, keyed by
// directory index, the way the format requires entries owning their
// decoded section once materialized.
type Parsed struct {
	Header    Header
	Directory Directory
	data      []byte // retained so callers can load section bodies lazily

	properties map[int]PropertyList
	images     map[int]ImagePlane
	camfs      map[int][]camf.Entry
}

// Parse validates the header and directory of a complete X3F file buffer.
func Parse(data []byte) (*Parsed, error) {
	hdr, _, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	dir, err := ParseDirectory(data)
	if err != nil {
		return nil, err
	}
	return &Parsed{
		Header:     hdr,
		Directory:  dir,
		data:       data,
		properties: make(map[int]PropertyList),
		images:     make(map[int]ImagePlane),
		camfs:      make(map[int][]camf.Entry),
	}, nil
}

// Body returns the raw payload bytes (past the type-specific header) for
// the given entry.
func (p *Parsed) Body(e Entry) []byte {
	return e.Body(p.data)
}

// Property loads (and memoizes) the decoded property list at directory
// index idx.
func (p *Parsed) Property(idx int) (PropertyList, error) {
	if pl, ok := p.properties[idx]; ok {
		return pl, nil
	}
	e := p.Directory.Entries[idx]
	pl, err := LoadProperty(*e.Property, p.Body(e))
	if err != nil {
		return PropertyList{}, err
	}
	p.properties[idx] = pl
	return pl, nil
}

// Image loads (and memoizes) the decoded image plane at directory index idx.
func (p *Parsed) Image(idx int) (ImagePlane, error) {
	if im, ok := p.images[idx]; ok {
		return im, nil
	}
	e := p.Directory.Entries[idx]
	im, err := LoadImage(e, p.Body(e))
	if err != nil {
		return ImagePlane{}, err
	}
	p.images[idx] = im
	return im, nil
}

// Camf loads (and memoizes) the decoded CAMF entries at directory index idx.
func (p *Parsed) Camf(idx int) ([]camf.Entry, error) {
	if c, ok := p.camfs[idx]; ok {
		return c, nil
	}
	e := p.Directory.Entries[idx]
	c, err := LoadCamf(e, p.Body(e))
	if err != nil {
		return nil, err
	}
	p.camfs[idx] = c
	return c, nil
}

// FindByType returns the index of the first directory entry of the given
// section type, or -1 if none exists.
func (p *Parsed) FindByType(t SectionType) int {
	for i, e := range p.Directory.Entries {
		if e.Type == t {
			return i
		}
	}
	return -1
}

// FindImageByTypeFormat returns the index of the first SECi entry whose
// type_format matches, or -1 if none exists.
func (p *Parsed) FindImageByTypeFormat(typeFormat uint32) int {
	for i, e := range p.Directory.Entries {
		if e.Image != nil && e.Image.TypeFormat() == typeFormat {
			return i
		}
	}
	return -1
}

// Meta builds a camf.Access over the file's first CAMF section, first
// PROP section, and header white-balance fallback. A
// file with no CAMF section still yields a usable Access backed only by
// PROP and the header — every CAMF lookup then returns xerr.NotFound.
func (p *Parsed) Meta() (*camf.Access, error) {
	var entries []camf.Entry
	if idx := p.FindByType(SectionCamf); idx >= 0 {
		c, err := p.Camf(idx)
		if err != nil {
			return nil, err
		}
		entries = c
	}

	var props map[string]string
	if idx := p.FindByType(SectionProperty); idx >= 0 {
		pl, err := p.Property(idx)
		if err != nil {
			return nil, err
		}
		props = pl.Entries
	}

	return camf.NewAccess(entries, props, p.Header.WhiteBalance), nil
}
