package indextest

import (
	"errors"
	"fmt"
	"time"

	check "gopkg.in/check.v1"

	"github.com/mycok/uBasket/itemindex/index"
)

// BaseSuite defines a set of re-usable index related tests that can
// be executed against any concrete type that implements the index.Indexer interface.
type BaseSuite struct {
	idx index.Indexer
}

// SetIndex sets BaseSuite's index field.
func (s *BaseSuite) SetIndex(index index.Indexer) {
	s.idx = index
}

// TestIndexingDocument verifies the indexing logic for new and existing documents.
func (s *BaseSuite) TestIndexingDocument(c *check.C) {
	// Upsert new document.
	doc := &index.Document{
		Label:       "whole milk",
		Degree:      4,
		TotalWeight: 12,
		IndexedAt:   time.Now().Add(-12 * time.Hour).UTC(),
	}

	err := s.idx.Index(doc)
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Index insert++++: %v", err),
	)

	// Update existing document.
	updatedDoc := &index.Document{
		Label:       doc.Label,
		Degree:      6,
		TotalWeight: 19,
		IndexedAt:   time.Now().UTC(),
	}

	err = s.idx.Index(updatedDoc)
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Index update++++: %v", err),
	)

	// Query the index to verify the update process.
	d, err := s.idx.FindByLabel(updatedDoc.Label)
	c.Assert(err, check.IsNil)
	c.Assert(d, check.DeepEquals, updatedDoc)

	// Insert a document without a label.
	docWithoutLabel := &index.Document{
		Degree: 2,
	}

	err = s.idx.Index(docWithoutLabel)
	c.Assert(
		errors.Is(err, index.ErrMissingLabel), check.Equals, true,
		check.Commentf("++++Index insert++++: %v", err),
	)
}

// TestFindByLabel verifies the document lookup logic.
func (s *BaseSuite) TestFindByLabel(c *check.C) {
	// Upsert new document.
	doc := &index.Document{
		Label:       "rolls/buns",
		Degree:      3,
		TotalWeight: 7,
		IndexedAt:   time.Now().Add(-12 * time.Hour).UTC(),
	}

	err := s.idx.Index(doc)
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Index insert++++: %v", err),
	)

	// Perform a doc lookup to verify the insert logic.
	retrievedDoc, err := s.idx.FindByLabel(doc.Label)
	c.Assert(err, check.IsNil)
	c.Assert(retrievedDoc, check.DeepEquals, doc, check.Commentf("document returned by FindByLabel does not match the inserted document"))

	// Perform a doc lookup for a non existing label.
	_, err = s.idx.FindByLabel("charcoal")
	c.Assert(errors.Is(err, index.ErrUnknownItem), check.Equals, true)
}

// TestMatchKeywordSearch verifies the document search logic when searching for
// keyword matches.
func (s *BaseSuite) TestMatchKeywordSearch(c *check.C) {
	var (
		numOfDocs      = 50
		expectedLabels = make([]string, 0)
	)

	// Insert 50 documents with descending co-purchase weights.
	for i := 0; i < numOfDocs; i++ {
		label := fmt.Sprintf("pantry staple %02d", i)
		if i%5 == 0 {
			label = fmt.Sprintf("organic blend %02d", i)
			expectedLabels = append(expectedLabels, label)
		}

		doc := &index.Document{
			Label:       label,
			Degree:      numOfDocs - i,
			TotalWeight: numOfDocs - i,
		}

		err := s.idx.Index(doc)
		c.Assert(
			err, check.IsNil,
			check.Commentf("++++Index insert++++: %v", err),
		)
	}

	// Perform keyword-match search.
	it, err := s.idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "organic",
	})
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Search keyword match++++: %v", err),
	)
	c.Assert(iterateDocs(c, it), check.DeepEquals, expectedLabels)
}

// TestPrefixSearch verifies the document search logic when searching for
// labels by prefix.
func (s *BaseSuite) TestPrefixSearch(c *check.C) {
	docs := []*index.Document{
		{Label: "milk", TotalWeight: 50},
		{Label: "butter", TotalWeight: 40},
		{Label: "buttermilk", TotalWeight: 30},
		{Label: "butter beans", TotalWeight: 20},
		{Label: "salted butter", TotalWeight: 10},
		{Label: "jam", TotalWeight: 5},
	}

	for _, doc := range docs {
		err := s.idx.Index(doc)
		c.Assert(
			err, check.IsNil,
			check.Commentf("++++Index insert++++: %v", err),
		)
	}

	it, err := s.idx.Search(index.Query{
		Type:       index.QueryTypePrefix,
		Expression: "butter",
	})
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Search prefix++++: %v", err),
	)

	// Labels whose terms start with the prefix, most purchased first.
	expectedLabels := []string{"butter", "buttermilk", "butter beans", "salted butter"}
	c.Assert(iterateDocs(c, it), check.DeepEquals, expectedLabels)
}

// TestMatchKeywordSearchWithOffset verifies the document search logic when searching
// for keyword matches and skipping some results.
func (s *BaseSuite) TestMatchKeywordSearchWithOffset(c *check.C) {
	var (
		numOfDocs      = 50
		expectedLabels = make([]string, 0)
	)

	// Insert 50 documents with descending co-purchase weights.
	for i := 0; i < numOfDocs; i++ {
		label := fmt.Sprintf("tea blend %02d", i)
		expectedLabels = append(expectedLabels, label)

		doc := &index.Document{
			Label:       label,
			Degree:      numOfDocs - i,
			TotalWeight: numOfDocs - i,
		}

		err := s.idx.Index(doc)
		c.Assert(
			err, check.IsNil,
			check.Commentf("++++Index insert++++: %v", err),
		)
	}

	// Perform keyword-match search.
	it, err := s.idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "tea",
		Offset:     20,
	})
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Search keyword match++++: %v", err),
	)
	c.Assert(iterateDocs(c, it), check.DeepEquals, expectedLabels[20:])

	// Search with offset above the total number of results.
	it, err = s.idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "tea",
		Offset:     200,
	})

	c.Assert(err, check.IsNil)
	c.Assert(iterateDocs(c, it), check.HasLen, 0)
}

// TestReindexingUpdatesRanking checks that re-indexing a document with a new
// total weight re-orders search results accordingly.
func (s *BaseSuite) TestReindexingUpdatesRanking(c *check.C) {
	var (
		numOfDocs      = 50
		expectedLabels = make([]string, 0)
	)

	for i := 0; i < numOfDocs; i++ {
		label := fmt.Sprintf("tea blend %02d", i)
		expectedLabels = append(expectedLabels, label)

		doc := &index.Document{
			Label:       label,
			Degree:      numOfDocs - i,
			TotalWeight: numOfDocs - i,
		}

		err := s.idx.Index(doc)
		c.Assert(
			err, check.IsNil,
			check.Commentf("++++Index insert++++: %v", err),
		)
	}

	it, err := s.idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "tea",
	})
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Search keyword match++++: %v", err),
	)
	c.Assert(iterateDocs(c, it), check.DeepEquals, expectedLabels)

	// Re-index every document with inverted weights so that results are
	// sorted in the reverse order.
	for i := 0; i < numOfDocs; i++ {
		doc := &index.Document{
			Label:       expectedLabels[i],
			Degree:      numOfDocs - i,
			TotalWeight: i + 1,
		}

		err := s.idx.Index(doc)
		c.Assert(
			err, check.IsNil,
			check.Commentf("++++Index update++++: %v", err),
		)
	}

	it, err = s.idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "tea",
	})
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Search keyword match++++: %v", err),
	)
	c.Assert(iterateDocs(c, it), check.DeepEquals, reverse(expectedLabels))
}

func iterateDocs(c *check.C, it index.Iterator) []string {
	var labels []string
	for it.Next() {
		labels = append(labels, it.Document().Label)
	}

	c.Assert(it.Error(), check.IsNil)
	c.Assert(it.Close(), check.IsNil)

	return labels
}

func reverse(data []string) []string {
	for left, right := 0, len(data)-1; left < right; left, right = left+1, right-1 {
		data[left], data[right] = data[right], data[left]
	}

	return data
}
