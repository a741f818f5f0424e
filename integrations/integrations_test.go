package integrations

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"bizflow/internal/client"
	"bizflow/internal/events"
	"bizflow/internal/models"
)

func (suite *IntegrationSuite) TestMenuRoundTrip() {
	ctx := context.Background()
	created, err := suite.client.CreateMenuItem(ctx, "integration", models.MenuItem{Label: "Home", URL: "/"})
	suite.Require().NoError(err)

	items, err := suite.client.ListMenu(ctx, "integration")
	suite.Require().NoError(err)
	suite.Require().Len(items, 1)
	suite.Equal(created.ID, items[0].ID)
	suite.Equal("Home", items[0].Label)
	suite.Equal("/", items[0].URL)
}

func (suite *IntegrationSuite) TestTransitionPipeline() {
	ctx := context.Background()
	conn := suite.dialLive(string(models.KindReservation))
	defer conn.Close()
	suite.Require().Eventually(func() bool { return suite.hub.Clients() >= 1 }, time.Second, 10*time.Millisecond)

	rec, err := suite.client.CreateRecord(ctx, models.KindReservation, "Room 12", "")
	suite.Require().NoError(err)

	_, err = suite.client.Transition(ctx, models.KindReservation, rec.ID, models.TransitionRequest{To: "confirmed"})
	suite.Require().NoError(err)

	suite.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var live events.TransitionEvent
	suite.Require().NoError(conn.ReadJSON(&live))
	suite.Equal(rec.ID, live.RecordID)
	suite.Equal(models.Status("confirmed"), live.To)

	suite.expectPublish()
	suite.tasks.ProcessPendingTasks(ctx)
	suite.mu.Lock()
	suite.Require().NotEmpty(suite.published)
	last := suite.published[len(suite.published)-1]
	suite.mu.Unlock()
	var evt events.TransitionEvent
	suite.Require().NoError(json.Unmarshal(last, &evt))
	suite.Equal(rec.ID, evt.RecordID)

	var pending int
	suite.Require().NoError(suite.db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&pending))
	suite.Zero(pending)

	suite.Eventually(func() bool {
		var n int
		err := suite.db.QueryRow(`SELECT COUNT(*) FROM audit_logs WHERE record_id=$1`, rec.ID).Scan(&n)
		return err == nil && n >= 1
	}, 2*time.Second, 20*time.Millisecond)
}

func (suite *IntegrationSuite) TestConcurrentTransitionsApplyOnce() {
	ctx := context.Background()
	rec, err := suite.client.CreateRecord(ctx, models.KindInvoice, "INV-7", "")
	suite.Require().NoError(err)

	// Separate clients so the client-side guard does not short-circuit.
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := client.New(suite.testServer.URL, client.WithSession(client.BasicAuth{User: testUsername, Password: testPassword}))
			_, errs[i] = c.Transition(ctx, models.KindInvoice, rec.ID, models.TransitionRequest{To: "sent"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		suite.True(client.IsStatus(err, http.StatusConflict) || client.IsStatus(err, http.StatusBadRequest), err.Error())
	}
	suite.Equal(1, ok)

	history, err := suite.client.History(ctx, models.KindInvoice, rec.ID)
	suite.Require().NoError(err)
	suite.Len(history, 1)

	// drain the outbox rows this test produced
	suite.expectPublish()
	suite.tasks.ProcessPendingTasks(ctx)
}
