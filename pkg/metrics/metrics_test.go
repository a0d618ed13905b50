package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When a manager is created with custom names", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithPrometheusRegistry(registry),
			)
			m.gradesComputed.WithLabelValues("Elite").Inc()

			Convey("Then collectors are registered under that namespace", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(families, ShouldNotBeEmpty)
				found := false
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "test_unit_"), ShouldBeTrue)
					if f.GetName() == "test_unit_grades_computed_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When the same registry is reused", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then registering twice panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When grades are recorded", func() {
			before := testutil.ToFloat64(globalManager.gradesComputed.WithLabelValues("Solid"))
			RecordGrade("Solid", 0.2)
			RecordGrade("Solid", 0.1)

			Convey("Then the tier counter grows", func() {
				So(testutil.ToFloat64(globalManager.gradesComputed.WithLabelValues("Solid")), ShouldEqual, before+2)
			})
		})

		Convey("When gauges are updated", func() {
			UpdateUsersTotal(3)
			UpdateTeamsTotal(4)
			UpdatePlayersTotal(17)
			UpdateCatalogSeasons(40)
			UpdateQueueSize(5)
			UpdateQueueCapacity(100)
			UpdateQueueUtilization(0.05)
			UpdateWorkerCount(4)
			UpdateWorkerActiveCount(1)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.usersTotal), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.playersTotal), ShouldEqual, 17)
				So(testutil.ToFloat64(globalManager.catalogSeasons), ShouldEqual, 40)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 100)
				So(testutil.ToFloat64(globalManager.workerActiveCount), ShouldEqual, 1)
			})
		})

		Convey("When labelled counters are used", func() {
			before := testutil.ToFloat64(globalManager.authAttempts.WithLabelValues("login", "ok"))
			RecordAuthAttempt("login", "ok")
			RecordTradeEvaluated("Even")
			RecordErrorByEndpoint("/api/teams", "POST", "bad_request")
			RecordErrorByComponent("repository", "conflict")
			RecordHTTPRequest("/api/grade", "POST", "200")
			RecordHTTPRequestDuration("/api/grade", "POST", "200", 3)
			RecordRepositoryQueryLatency("add_player", 1.5)

			Convey("Then the labelled series are counted", func() {
				So(testutil.ToFloat64(globalManager.authAttempts.WithLabelValues("login", "ok")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.tradesEvaluated.WithLabelValues("Even")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When plain counters are used", func() {
			So(func() {
				RecordCatalogImport()
				RecordRecommendation()
				RecordAuthRateLimited()
				RecordRegradeDuplicate()
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordWorkerProcessingLatency(2)
				RecordWorkerError()
				RecordRegradeCompleted()
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("Then the registry exposes the rostr namespace", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			So(strings.HasPrefix(families[0].GetName(), "rostr_service_"), ShouldBeTrue)
		})
	})
}

func TestGlobalLatencyBuckets(t *testing.T) {
	Convey("Given the global manager", t, func() {
		RecordGrade("Solid", 3)

		Convey("When the grading latency histogram is gathered", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			var bounds []float64
			for _, f := range families {
				if f.GetName() != "rostr_service_grading_latency_milliseconds" {
					continue
				}
				for _, b := range f.GetMetric()[0].GetHistogram().GetBucket() {
					bounds = append(bounds, b.GetUpperBound())
				}
			}

			Convey("Then the buckets are on a millisecond scale", func() {
				So(bounds, ShouldResemble, latencyBuckets)
			})
		})
	})
}
