package dataset_test

import (
	"errors"
	"strings"

	check "gopkg.in/check.v1"

	"github.com/mycok/uBasket/dataset"
)

// Initialize and register a pointer instance of the csvSourceTestSuite
// to be executed by check testing package.
var _ = check.Suite(new(csvSourceTestSuite))

type csvSourceTestSuite struct{}

func (s *csvSourceTestSuite) TestReadsRecordsByColumnName(c *check.C) {
	// The item column precedes the customer column and an extra column
	// is present: positions must not matter.
	input := strings.Join([]string{
		"itemDescription,Date,Member_number,year",
		"whole milk,21-07-2015,1808,2015",
		"pip fruit,05-01-2015,2552,2015",
	}, "\n")

	src, err := dataset.NewCSVSource(strings.NewReader(input), dataset.Schema{})
	c.Assert(err, check.IsNil)

	records := drainRecords(c, src)
	c.Assert(records, check.DeepEquals, []dataset.Record{
		{CustomerID: "1808", Date: "21-07-2015", Item: "whole milk"},
		{CustomerID: "2552", Date: "05-01-2015", Item: "pip fruit"},
	})
}

func (s *csvSourceTestSuite) TestCustomSchema(c *check.C) {
	input := strings.Join([]string{
		"customer,purchased_on,product",
		"77,2016-02-01,yogurt",
	}, "\n")

	src, err := dataset.NewCSVSource(strings.NewReader(input), dataset.Schema{
		CustomerColumn: "customer",
		DateColumn:     "purchased_on",
		ItemColumn:     "product",
	})
	c.Assert(err, check.IsNil)

	records := drainRecords(c, src)
	c.Assert(records, check.DeepEquals, []dataset.Record{
		{CustomerID: "77", Date: "2016-02-01", Item: "yogurt"},
	})
}

func (s *csvSourceTestSuite) TestMissingColumns(c *check.C) {
	input := strings.Join([]string{
		"Member_number,year",
		"1808,2015",
	}, "\n")

	_, err := dataset.NewCSVSource(strings.NewReader(input), dataset.Schema{})
	c.Assert(err, check.NotNil)
	c.Assert(errors.Is(err, dataset.ErrMissingColumns), check.Equals, true)

	// The error names every missing column for user-visible reporting.
	c.Assert(err, check.ErrorMatches, "(?s).*Date.*itemDescription.*")
}

func (s *csvSourceTestSuite) TestSkipsShortRows(c *check.C) {
	input := strings.Join([]string{
		"Member_number,Date,itemDescription",
		"1808",
		"2552,05-01-2015,pip fruit",
	}, "\n")

	src, err := dataset.NewCSVSource(strings.NewReader(input), dataset.Schema{})
	c.Assert(err, check.IsNil)

	records := drainRecords(c, src)
	c.Assert(records, check.DeepEquals, []dataset.Record{
		{CustomerID: "2552", Date: "05-01-2015", Item: "pip fruit"},
	})
}

func (s *csvSourceTestSuite) TestEmptyInput(c *check.C) {
	_, err := dataset.NewCSVSource(strings.NewReader(""), dataset.Schema{})
	c.Assert(err, check.ErrorMatches, "(?s).*read header.*")
}

func drainRecords(c *check.C, src *dataset.CSVSource) []dataset.Record {
	var records []dataset.Record
	for src.Next() {
		records = append(records, src.Record())
	}

	c.Assert(src.Error(), check.IsNil)
	c.Assert(src.Close(), check.IsNil)

	return records
}
