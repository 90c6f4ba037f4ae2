package okavango

import (
	"net/http/httptest"
	"os"

	. "gopkg.in/check.v1"
)

type AtlasSuite struct {
	srv   *httptest.Server
	atlas *Atlas
}

var _ = Suite(&AtlasSuite{})

func (s *AtlasSuite) SetUpSuite(c *C) {
	dir := c.MkDir()
	srv, sets, geoURL, err := newFixtureServer(dir)
	c.Assert(err, IsNil)
	s.srv = srv

	s.atlas, err = NewAtlas(WithDataDir(dir+"/downloads"), WithSources(sets, geoURL))
	c.Assert(err, IsNil)
}

func (s *AtlasSuite) TearDownSuite(c *C) {
	if s.srv != nil {
		s.srv.Close()
	}
}

func (s *AtlasSuite) TestDownloadedFiles(c *C) {
	files := s.atlas.Files()
	// Five datasets plus the boundary archive make six files.
	c.Assert(len(files), Equals, 6)
	for key, path := range files {
		fi, err := os.Stat(path)
		c.Assert(err, IsNil, Commentf("missing file for %s", key))
		c.Assert(fi.Size() > 0, Equals, true, Commentf("empty file for %s", key))
	}
}

func (s *AtlasSuite) TestNamedAccessors(c *C) {
	c.Assert(s.atlas.AnnualChangeForestArea, Not(IsNil))
	c.Assert(s.atlas.AnnualDeforestation, Not(IsNil))
	c.Assert(s.atlas.ShareLandProtected, Not(IsNil))
	c.Assert(s.atlas.ShareLandDegraded, Not(IsNil))
	c.Assert(s.atlas.ForestAreaTotal, Not(IsNil))

	c.Assert(s.atlas.AnnualDeforestation, Equals, s.atlas.Table("annual_deforestation"))
}

func (s *AtlasSuite) TestMapsByLabel(c *C) {
	maps := s.atlas.Maps()
	c.Assert(len(maps), Equals, 5)
	c.Assert(maps["Annual Deforestation"], Equals, s.atlas.AnnualDeforestation)
	c.Assert(maps["Forest Area Total Share"], Equals, s.atlas.ForestAreaTotal)
}

func (s *AtlasSuite) TestJoinedTables(c *C) {
	for _, key := range s.atlas.Keys() {
		tbl := s.atlas.Table(key)
		c.Assert(tbl.Len(), Equals, len(fixtureCountries))
		c.Assert(tbl.NonNull(tbl.ValueColumn()) > 0, Equals, true)
	}
}

func (s *AtlasSuite) TestLocate(c *C) {
	b, ok := s.atlas.Locate(5, 5)
	c.Assert(ok, Equals, true)
	c.Assert(b.Name, Equals, "Alphaland")

	b, ok = s.atlas.Locate(5, 25)
	c.Assert(ok, Equals, true)
	c.Assert(b.Name, Equals, "Betaria")

	// Gammastan is the triangle (40,0)-(45,10)-(50,0).
	b, ok = s.atlas.Locate(2, 45)
	c.Assert(ok, Equals, true)
	c.Assert(b.Name, Equals, "Gammastan")

	_, ok = s.atlas.Locate(-40, -120)
	c.Assert(ok, Equals, false)
}
