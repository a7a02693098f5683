// Package solr implements the mdk.Indexer interface against an Apache
// Solr core. One flat document is stored per dataset, keyed by the
// sanitized identifier.
package solr

import (
	"fmt"

	"github.com/pkg/errors"
	gosolr "github.com/vanng822/go-solr/solr"

	"github.com/metsearch/mdk"
)

// addChunk is the number of documents posted per update request.
const addChunk = 100

// Client wraps a Solr core. All calls are blocking and synchronous; there
// is no retry here - failures surface to the caller.
type Client struct {
	si *gosolr.SolrInterface
}

// NewClient connects to the Solr core at baseURL.
func NewClient(baseURL, core string) (*Client, error) {
	si, err := gosolr.NewSolrInterface(baseURL, core)
	if err != nil {
		return nil, errors.Wrap(err, "creating solr interface")
	}
	return &Client{si: si}, nil
}

// Add posts documents to the core.
func (c *Client) Add(docs ...mdk.Document) error {
	payload := make([]gosolr.Document, len(docs))
	for i, d := range docs {
		payload[i] = gosolr.Document(d)
	}
	resp, err := c.si.Add(payload, addChunk, nil)
	if err != nil {
		return errors.Wrap(err, "adding documents")
	}
	if !resp.Success {
		return errors.Errorf("solr add was not successful: %v", resp.Result)
	}
	return nil
}

// Search returns the documents stored under id.
func (c *Client) Search(id string) ([]mdk.Document, error) {
	q := gosolr.NewQuery()
	q.Q(fmt.Sprintf("id:%q", id))
	q.Rows(100)
	res, err := c.si.Search(q).Result(nil)
	if err != nil {
		return nil, errors.Wrapf(err, "searching for %s", id)
	}
	docs := make([]mdk.Document, 0, len(res.Results.Docs))
	for _, d := range res.Results.Docs {
		docs = append(docs, mdk.Document(d))
	}
	return docs, nil
}

// Delete removes the document stored under id.
func (c *Client) Delete(id string) error {
	resp, err := c.si.Delete(map[string]interface{}{"query": fmt.Sprintf("id:%q", id)}, nil)
	if err != nil {
		return errors.Wrapf(err, "deleting %s", id)
	}
	if !resp.Success {
		return errors.Errorf("solr delete was not successful: %v", resp.Result)
	}
	return nil
}

// Commit issues an explicit commit.
func (c *Client) Commit() error {
	resp, err := c.si.Commit()
	if err != nil {
		return errors.Wrap(err, "committing")
	}
	if !resp.Success {
		return errors.Errorf("solr commit was not successful: %v", resp.Result)
	}
	return nil
}

// Close commits whatever is pending.
func (c *Client) Close() error {
	return c.Commit()
}
