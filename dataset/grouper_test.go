package dataset_test

import (
	"errors"

	"github.com/golang/mock/gomock"
	check "gopkg.in/check.v1"

	"github.com/mycok/uBasket/dataset"
	mock_dataset "github.com/mycok/uBasket/dataset/mocks"
)

// Initialize and register a pointer instance of the grouperTestSuite
// to be executed by check testing package.
var _ = check.Suite(new(grouperTestSuite))

type grouperTestSuite struct{}

func (s *grouperTestSuite) TestGroupsByCustomerAndDate(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	it := mock_dataset.NewMockRecordIterator(ctrl)
	expectRecords(it,
		dataset.Record{CustomerID: "1808", Date: "21-07-2015", Item: "whole milk"},
		dataset.Record{CustomerID: "1808", Date: "21-07-2015", Item: "yogurt"},
		dataset.Record{CustomerID: "1808", Date: "22-07-2015", Item: "rolls"},
		dataset.Record{CustomerID: "2552", Date: "21-07-2015", Item: "whole milk"},
	)

	baskets, stats, err := dataset.GroupBaskets(it)
	c.Assert(err, check.IsNil)

	c.Assert(baskets, check.DeepEquals, map[dataset.BasketKey]dataset.Basket{
		{CustomerID: "1808", Date: "21-07-2015"}: {"whole milk", "yogurt"},
		{CustomerID: "1808", Date: "22-07-2015"}: {"rolls"},
		{CustomerID: "2552", Date: "21-07-2015"}: {"whole milk"},
	})
	c.Assert(stats, check.DeepEquals, dataset.Stats{
		RecordsRead: 4,
		Baskets:     3,
	})
}

func (s *grouperTestSuite) TestNormalizesRecordFields(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	it := mock_dataset.NewMockRecordIterator(ctrl)
	expectRecords(it,
		dataset.Record{CustomerID: " 1808 ", Date: " 21-07-2015 ", Item: "  Whole Milk  "},
	)

	baskets, _, err := dataset.GroupBaskets(it)
	c.Assert(err, check.IsNil)

	// Keys are trimmed and item labels additionally lower-cased.
	c.Assert(baskets, check.DeepEquals, map[dataset.BasketKey]dataset.Basket{
		{CustomerID: "1808", Date: "21-07-2015"}: {"whole milk"},
	})
}

func (s *grouperTestSuite) TestDropsRecordsWithBlankItems(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	it := mock_dataset.NewMockRecordIterator(ctrl)
	expectRecords(it,
		dataset.Record{CustomerID: "1808", Date: "21-07-2015", Item: "whole milk"},
		dataset.Record{CustomerID: "1808", Date: "21-07-2015", Item: "   "},
		dataset.Record{CustomerID: "2552", Date: "21-07-2015", Item: ""},
	)

	baskets, stats, err := dataset.GroupBaskets(it)
	c.Assert(err, check.IsNil)

	// Dropped records never create a basket: customer 2552 bought
	// nothing usable.
	c.Assert(baskets, check.DeepEquals, map[dataset.BasketKey]dataset.Basket{
		{CustomerID: "1808", Date: "21-07-2015"}: {"whole milk"},
	})
	c.Assert(stats, check.DeepEquals, dataset.Stats{
		RecordsRead:    3,
		RecordsSkipped: 2,
		Baskets:        1,
	})
}

func (s *grouperTestSuite) TestCollapsesDuplicateItemsWithinABasket(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	it := mock_dataset.NewMockRecordIterator(ctrl)
	expectRecords(it,
		dataset.Record{CustomerID: "1808", Date: "21-07-2015", Item: "bread"},
		dataset.Record{CustomerID: "1808", Date: "21-07-2015", Item: "bread"},
		dataset.Record{CustomerID: "1808", Date: "21-07-2015", Item: "milk"},
		dataset.Record{CustomerID: "1808", Date: "21-07-2015", Item: " BREAD "},
	)

	baskets, stats, err := dataset.GroupBaskets(it)
	c.Assert(err, check.IsNil)

	// Duplicates collapse after normalization and first-seen order is
	// preserved.
	c.Assert(baskets, check.DeepEquals, map[dataset.BasketKey]dataset.Basket{
		{CustomerID: "1808", Date: "21-07-2015"}: {"bread", "milk"},
	})
	c.Assert(stats.RecordsRead, check.Equals, 4)
	c.Assert(stats.RecordsSkipped, check.Equals, 0)
}

func (s *grouperTestSuite) TestIteratorErrorAbortsGrouping(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	it := mock_dataset.NewMockRecordIterator(ctrl)
	gomock.InOrder(
		it.EXPECT().Next().Return(true),
		it.EXPECT().Record().Return(
			dataset.Record{CustomerID: "1808", Date: "21-07-2015", Item: "bread"},
		),
		it.EXPECT().Next().Return(false),
	)
	it.EXPECT().Error().Return(errors.New("record source exploded"))
	it.EXPECT().Close().Return(nil)

	baskets, stats, err := dataset.GroupBaskets(it)
	c.Assert(err, check.ErrorMatches, "(?s).*group baskets.*record source exploded.*")

	// A failed load never exposes partially grouped data.
	c.Assert(baskets, check.IsNil)
	c.Assert(stats, check.DeepEquals, dataset.Stats{})
}

// expectRecords programs the mock iterator to yield the provided records
// in order and then report a clean end of stream.
func expectRecords(it *mock_dataset.MockRecordIterator, records ...dataset.Record) {
	var calls []*gomock.Call
	for _, record := range records {
		calls = append(calls,
			it.EXPECT().Next().Return(true),
			it.EXPECT().Record().Return(record),
		)
	}
	calls = append(calls, it.EXPECT().Next().Return(false))

	gomock.InOrder(calls...)

	it.EXPECT().Error().Return(nil)
	it.EXPECT().Close().Return(nil)
}
