package api

import (
	"github.com/gin-gonic/gin"

	"github.com/freightdesk/backoffice/pkg/controller"
	"github.com/freightdesk/backoffice/pkg/dataset"
	"github.com/freightdesk/backoffice/pkg/middleware/requestsize"
)

func (a *API) listDatasets(c *gin.Context) {
	all := a.deps.Datasets.All()
	out := make([]dataset.Descriptor, len(all))
	for i, ds := range all {
		out[i] = ds.Describe()
	}
	controller.Success(c, out)
}

// lookup resolves the :name parameter, answering 404 when it is unknown.
func (a *API) lookup(c *gin.Context) (dataset.Dataset, bool) {
	name := c.Param("name")
	ds, ok := a.deps.Datasets.Lookup(name)
	if !ok {
		controller.Error(c, controller.NewNotFoundError("dataset not found").
			WithDetails(map[string]any{"dataset": name}))
		return nil, false
	}
	return ds, true
}

func (a *API) describeDataset(c *gin.Context) {
	ds, ok := a.lookup(c)
	if !ok {
		return
	}
	controller.Success(c, ds.Describe())
}

func (a *API) listRecords(c *gin.Context) {
	ds, ok := a.lookup(c)
	if !ok {
		return
	}
	q, err := ParseListQuery(c.Request.URL.Query(), a.cfg.MaxItemsPerPage)
	if err != nil {
		controller.Error(c, err)
		return
	}
	result, err := ds.List(c.Request.Context(), q)
	if err != nil {
		controller.Error(c, err)
		return
	}
	controller.Success(c, result)
}

func (a *API) getRecord(c *gin.Context) {
	ds, ok := a.lookup(c)
	if !ok {
		return
	}
	record, err := ds.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		controller.Error(c, err)
		return
	}
	controller.Success(c, record)
}

func (a *API) createRecord(c *gin.Context) {
	ds, ok := a.lookup(c)
	if !ok {
		return
	}
	body, err := requestsize.ReadBody(c)
	if err != nil {
		controller.Error(c, err)
		return
	}
	record, err := ds.Create(c.Request.Context(), body)
	if err != nil {
		controller.Error(c, err)
		return
	}
	controller.Created(c, record)
}

func (a *API) updateRecord(c *gin.Context) {
	ds, ok := a.lookup(c)
	if !ok {
		return
	}
	body, err := requestsize.ReadBody(c)
	if err != nil {
		controller.Error(c, err)
		return
	}
	record, err := ds.Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		controller.Error(c, err)
		return
	}
	controller.Success(c, record)
}

func (a *API) deleteRecord(c *gin.Context) {
	ds, ok := a.lookup(c)
	if !ok {
		return
	}
	if err := ds.Delete(c.Request.Context(), c.Param("id")); err != nil {
		controller.Error(c, err)
		return
	}
	controller.NoContent(c)
}
