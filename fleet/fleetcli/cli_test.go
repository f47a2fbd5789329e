package fleetcli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/urfave/cli"
)

type CLITestSuite struct {
	suite.Suite
	testApp *cli.App
	buf     *bytes.Buffer
}

func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func (s *CLITestSuite) SetupTest() {
	s.testApp = setUpApp()
	s.buf = new(bytes.Buffer)
	s.testApp.Writer = s.buf
}

func (s *CLITestSuite) TestAppMetadata() {
	assert.Equal(s.T(), Name, s.testApp.Name)
	assert.Equal(s.T(), Usage, s.testApp.Usage)
	assert.Len(s.T(), s.testApp.Commands, 5)
}

func (s *CLITestSuite) TestComplianceSummaryRequiresOrgID() {
	err := s.testApp.Run([]string{Name, "compliance-summary"})
	assert.EqualError(s.T(), err, "organization ID (--org-id) is required")
}

func (s *CLITestSuite) TestGenerateIFTAReportRequiresOrgID() {
	err := s.testApp.Run([]string{Name, "generate-ifta-report", "--year", "2024", "--quarter", "2"})
	assert.EqualError(s.T(), err, "organization ID (--org-id) is required")
}

func (s *CLITestSuite) TestImportIFTARatesRequiresFile() {
	err := s.testApp.Run([]string{Name, "import-ifta-rates"})
	assert.EqualError(s.T(), err, "rate file (--file) is required")
}

func (s *CLITestSuite) TestImportIFTARates() {
	dir := s.T().TempDir()
	src := filepath.Join(dir, "rates.toml")
	dest := filepath.Join(dir, "installed.toml")

	contents := "year = 2024\nquarter = 2\n\n[rates]\nIA = 0.30\nNE = 0.25\n"
	assert.NoError(s.T(), os.WriteFile(src, []byte(contents), 0600))

	err := s.testApp.Run([]string{Name, "import-ifta-rates", "--file", src, "--dest", dest})
	assert.NoError(s.T(), err)
	assert.Contains(s.T(), s.buf.String(), "Imported 2 jurisdiction rates for Q2 2024")

	installed, err := os.ReadFile(dest)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), contents, string(installed))
}

func (s *CLITestSuite) TestImportIFTARatesRejectsBadFile() {
	dir := s.T().TempDir()
	src := filepath.Join(dir, "rates.toml")
	assert.NoError(s.T(), os.WriteFile(src, []byte("year = 2024\nquarter = 7\n"), 0600))

	err := s.testApp.Run([]string{Name, "import-ifta-rates", "--file", src})
	assert.Error(s.T(), err)
	assert.Contains(s.T(), err.Error(), "unable to load rate file")
}
